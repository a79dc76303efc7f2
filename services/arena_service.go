package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/repositories"
)

// Arena anchors addressable through the admin API.
const (
	AnchorCenter  = "center"
	AnchorSpawnA  = "spawn_a"
	AnchorSpawnB  = "spawn_b"
	AnchorCornerA = "corner_a"
	AnchorCornerB = "corner_b"
)

// ArenaService is the arena registry: it owns every arena record in memory,
// tracks reservations, and hands out eligible arenas to matches and duels.
// Definitions (anchors, flags) are persisted through the repository; the
// reservation flag is runtime-only and is the single source of truth for
// "may a new match use this region".
type ArenaService interface {
	Hydrate(ctx context.Context) error

	Create(ctx context.Context, name string) (*models.Arena, error)
	Get(name string) (*models.Arena, error)
	List() []*models.Arena
	SetAnchor(ctx context.Context, name, anchor string, pos models.Position) error
	SetRegenerate(ctx context.Context, name string, regenerate bool) error
	SetKits(ctx context.Context, name string, kits []string) error
	Delete(ctx context.Context, name string) error

	// Allocate returns a complete, unreserved arena whose allow-list
	// permits the kit. Deterministic name order, so tests can predict the
	// result. ErrNoArenaAvailable is recoverable: callers requeue or notify.
	Allocate(kitID string) (*models.Arena, error)
	// AllocateOrClone falls back to cloning an instance off a complete
	// template arena when every eligible arena is reserved.
	AllocateOrClone(kitID string) (*models.Arena, error)
	Reserve(name string)
	// Release clears the reservation. Releasing an unreserved arena is a
	// no-op; releasing a cloned instance also drops it from the registry.
	Release(name string)
	ReleaseAll()
}

// cloneOffsetStep spaces cloned instances along the X axis so their regions
// never overlap the template or each other.
const cloneOffsetStep = 1024.0

type arenaService struct {
	repo repositories.ArenaRepository

	mu       sync.Mutex
	arenas   map[string]*models.Arena
	clones   map[string]bool
	cloneSeq int
}

func NewArenaService(repo repositories.ArenaRepository) ArenaService {
	return &arenaService{
		repo:   repo,
		arenas: make(map[string]*models.Arena),
		clones: make(map[string]bool),
	}
}

// Hydrate loads persisted arena definitions into the registry. Reservations
// always start cleared.
func (s *arenaService) Hydrate(ctx context.Context) error {
	arenas, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load arenas: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range arenas {
		a.InUse = false
		s.arenas[a.Name] = a
	}
	return nil
}

func (s *arenaService) Create(ctx context.Context, name string) (*models.Arena, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.arenas[name]; exists {
		return nil, ErrArenaNameConflict
	}
	arena := &models.Arena{Name: name}
	if err := s.repo.Create(ctx, arena); err != nil {
		if errors.Is(err, repositories.ErrArenaNameConflict) {
			return nil, ErrArenaNameConflict
		}
		return nil, err
	}
	s.arenas[name] = arena
	return arena, nil
}

func (s *arenaService) Get(name string) (*models.Arena, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok := s.arenas[name]
	if !ok {
		return nil, ErrArenaNotFound
	}
	return arena, nil
}

func (s *arenaService) List() []*models.Arena {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// sortedLocked must be called with the lock held.
func (s *arenaService) sortedLocked() []*models.Arena {
	out := make([]*models.Arena, 0, len(s.arenas))
	for _, a := range s.arenas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *arenaService) SetAnchor(ctx context.Context, name, anchor string, pos models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok := s.arenas[name]
	if !ok {
		return ErrArenaNotFound
	}
	switch anchor {
	case AnchorCenter:
		arena.Center = &pos
	case AnchorSpawnA:
		arena.SpawnA = &pos
	case AnchorSpawnB:
		arena.SpawnB = &pos
	case AnchorCornerA:
		arena.CornerA = &pos
	case AnchorCornerB:
		arena.CornerB = &pos
	default:
		return ErrInvalidAnchor
	}
	return s.persistLocked(ctx, arena)
}

func (s *arenaService) SetRegenerate(ctx context.Context, name string, regenerate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok := s.arenas[name]
	if !ok {
		return ErrArenaNotFound
	}
	arena.Regenerate = regenerate
	return s.persistLocked(ctx, arena)
}

func (s *arenaService) SetKits(ctx context.Context, name string, kits []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok := s.arenas[name]
	if !ok {
		return ErrArenaNotFound
	}
	arena.Kits = append([]string(nil), kits...)
	return s.persistLocked(ctx, arena)
}

// persistLocked writes arena back to the repository; cloned instances are
// runtime-only and never persisted.
func (s *arenaService) persistLocked(ctx context.Context, arena *models.Arena) error {
	if s.clones[arena.Name] {
		return nil
	}
	return s.repo.Update(ctx, arena)
}

func (s *arenaService) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok := s.arenas[name]
	if !ok {
		return ErrArenaNotFound
	}
	if arena.InUse {
		return ErrArenaReserved
	}
	if !s.clones[name] {
		if err := s.repo.Delete(ctx, name); err != nil && !errors.Is(err, repositories.ErrArenaNotFound) {
			return err
		}
	}
	delete(s.arenas, name)
	delete(s.clones, name)
	return nil
}

func (s *arenaService) Allocate(kitID string) (*models.Arena, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocateLocked(kitID)
}

func (s *arenaService) allocateLocked(kitID string) (*models.Arena, error) {
	for _, arena := range s.sortedLocked() {
		if arena.Complete() && !arena.InUse && arena.AllowsKit(kitID) {
			return arena, nil
		}
	}
	return nil, ErrNoArenaAvailable
}

func (s *arenaService) AllocateOrClone(kitID string) (*models.Arena, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if arena, err := s.allocateLocked(kitID); err == nil {
		return arena, nil
	}
	// Every eligible arena is busy; clone an instance off a template.
	for _, template := range s.sortedLocked() {
		if !template.Complete() || !template.AllowsKit(kitID) || s.clones[template.Name] {
			continue
		}
		return s.cloneLocked(template), nil
	}
	return nil, ErrNoArenaAvailable
}

// cloneLocked produces an offset-translated instance of the template with a
// collision-free suffixed name, registered runtime-only.
func (s *arenaService) cloneLocked(template *models.Arena) *models.Arena {
	for {
		s.cloneSeq++
		name := fmt.Sprintf("%s_%d", template.Name, s.cloneSeq)
		if _, taken := s.arenas[name]; taken {
			continue
		}
		clone := template.TranslatedCopy(name, float64(s.cloneSeq)*cloneOffsetStep, 0, 0)
		s.arenas[name] = clone
		s.clones[name] = true
		return clone
	}
}

func (s *arenaService) Reserve(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if arena, ok := s.arenas[name]; ok {
		arena.InUse = true
	}
}

func (s *arenaService) Release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	arena, ok := s.arenas[name]
	if !ok || !arena.InUse {
		return
	}
	arena.InUse = false
	if s.clones[name] {
		delete(s.arenas, name)
		delete(s.clones, name)
	}
}

// ReleaseAll clears every reservation. Shutdown path only.
func (s *arenaService) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, arena := range s.arenas {
		arena.InUse = false
		if s.clones[name] {
			delete(s.arenas, name)
			delete(s.clones, name)
		}
	}
}
