package models

import (
	"sync"
	"time"
)

type DuelState string

const (
	DuelStatePending   DuelState = "pending"
	DuelStatePreparing DuelState = "preparing"
	DuelStateCountdown DuelState = "countdown"
	DuelStateActive    DuelState = "active"
	DuelStateEnding    DuelState = "ending"
	DuelStateFinished  DuelState = "finished"
)

// Duel is a two-party, multi-round match negotiated through a pending
// challenge. It carries its own round-win accounting and the inventory
// snapshots restored between rounds.
type Duel struct {
	ID          string
	Token       string // single-use accept/decline token
	Challenger  string
	Target      string
	KitID       string
	RoundsToWin int
	CreatedAt   time.Time

	mu        sync.RWMutex
	state     DuelState
	arena     *Arena
	round     int
	wins      map[string]int
	snapshots map[string]InventorySnapshot
}

func NewDuel(id, token, challenger, target, kitID string, roundsToWin int, now time.Time) *Duel {
	return &Duel{
		ID:          id,
		Token:       token,
		Challenger:  challenger,
		Target:      target,
		KitID:       kitID,
		RoundsToWin: roundsToWin,
		CreatedAt:   now,
		state:       DuelStatePending,
		wins:        make(map[string]int),
		snapshots:   make(map[string]InventorySnapshot),
	}
}

func (d *Duel) State() DuelState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Duel) SetState(s DuelState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

func (d *Duel) Arena() *Arena {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.arena
}

func (d *Duel) SetArena(a *Arena) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.arena = a
}

func (d *Duel) IsParticipant(id string) bool {
	return id == d.Challenger || id == d.Target
}

// Opponent returns the other participant, or "" if id is not in the duel.
func (d *Duel) Opponent(id string) string {
	switch id {
	case d.Challenger:
		return d.Target
	case d.Target:
		return d.Challenger
	}
	return ""
}

// Participants returns both sides, challenger first.
func (d *Duel) Participants() []string {
	return []string{d.Challenger, d.Target}
}

// Round returns the current round number, starting at 1 once the first
// round has begun.
func (d *Duel) Round() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.round
}

func (d *Duel) BeginRound() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.round++
	return d.round
}

// AddRoundWin credits a round to id and returns the new total.
func (d *Duel) AddRoundWin(id string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wins[id]++
	return d.wins[id]
}

func (d *Duel) Wins(id string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wins[id]
}

// SetSnapshot stores the inventory captured for id at countdown start.
func (d *Duel) SetSnapshot(id string, snap InventorySnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshots[id] = snap
}

func (d *Duel) Snapshot(id string) (InventorySnapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap, ok := d.snapshots[id]
	return snap, ok
}
