package models

// Position is a point in the game world, including facing.
type Position struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// Translate returns a copy of the position shifted by the given deltas.
func (p Position) Translate(dx, dy, dz float64) Position {
	p.X += dx
	p.Y += dy
	p.Z += dz
	return p
}

// Region is the axis-aligned bounding box spanned by an arena's two corners.
type Region struct {
	World            string
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

// Contains reports whether pos lies inside the region.
func (r Region) Contains(pos Position) bool {
	if pos.World != r.World {
		return false
	}
	return pos.X >= r.MinX && pos.X <= r.MaxX &&
		pos.Y >= r.MinY && pos.Y <= r.MaxY &&
		pos.Z >= r.MinZ && pos.Z <= r.MaxZ
}

// Arena is a named playable region with team spawn anchors. An arena is
// usable ("complete") only once all five anchors have been set.
type Arena struct {
	Name       string    `json:"name"`
	Center     *Position `json:"center,omitempty"`
	SpawnA     *Position `json:"spawn_a,omitempty"`
	SpawnB     *Position `json:"spawn_b,omitempty"`
	CornerA    *Position `json:"corner_a,omitempty"`
	CornerB    *Position `json:"corner_b,omitempty"`
	Regenerate bool      `json:"regenerate"`
	// Kits is the allow-list of kit identifiers permitted on this arena.
	// Empty means every kit is allowed.
	Kits  []string `json:"kits,omitempty"`
	InUse bool     `json:"in_use"`
}

// Complete reports whether all five anchors are set.
func (a *Arena) Complete() bool {
	return a.Center != nil && a.SpawnA != nil && a.SpawnB != nil &&
		a.CornerA != nil && a.CornerB != nil
}

// AllowsKit reports whether the arena permits the given kit.
func (a *Arena) AllowsKit(kitID string) bool {
	if len(a.Kits) == 0 {
		return true
	}
	for _, k := range a.Kits {
		if k == kitID {
			return true
		}
	}
	return false
}

// Bounds computes the bounding region from the two corner anchors.
// Returns false if either corner is missing.
func (a *Arena) Bounds() (Region, bool) {
	if a.CornerA == nil || a.CornerB == nil {
		return Region{}, false
	}
	r := Region{
		World: a.CornerA.World,
		MinX:  min(a.CornerA.X, a.CornerB.X),
		MinY:  min(a.CornerA.Y, a.CornerB.Y),
		MinZ:  min(a.CornerA.Z, a.CornerB.Z),
		MaxX:  max(a.CornerA.X, a.CornerB.X),
		MaxY:  max(a.CornerA.Y, a.CornerB.Y),
		MaxZ:  max(a.CornerA.Z, a.CornerB.Z),
	}
	return r, true
}

// TranslatedCopy returns a new arena named name whose anchors are shifted by
// the given deltas. The kit allow-list and regeneration flag are copied; the
// reservation flag is not.
func (a *Arena) TranslatedCopy(name string, dx, dy, dz float64) *Arena {
	cp := &Arena{
		Name:       name,
		Regenerate: a.Regenerate,
		Kits:       append([]string(nil), a.Kits...),
	}
	shift := func(p *Position) *Position {
		if p == nil {
			return nil
		}
		moved := p.Translate(dx, dy, dz)
		return &moved
	}
	cp.Center = shift(a.Center)
	cp.SpawnA = shift(a.SpawnA)
	cp.SpawnB = shift(a.SpawnB)
	cp.CornerA = shift(a.CornerA)
	cp.CornerB = shift(a.CornerB)
	return cp
}
