package models

import (
	"sync"
	"time"
)

type MatchState string

const (
	MatchStatePreparing MatchState = "preparing"
	MatchStateCountdown MatchState = "countdown"
	MatchStateActive    MatchState = "active"
	MatchStateEnding    MatchState = "ending"
	MatchStateFinished  MatchState = "finished"
)

type MatchMode string

const (
	ModeFFA         MatchMode = "ffa"
	ModeSplit       MatchMode = "split"
	ModePartyVersus MatchMode = "partyvs"
	ModeQueue1v1    MatchMode = "queue_1v1"
	ModeQueue2v2    MatchMode = "queue_2v2"
	ModeQueue3v3    MatchMode = "queue_3v3"
)

// TeamBased reports whether the mode resolves winners by team rather than
// by last player standing.
func (m MatchMode) TeamBased() bool {
	return m != ModeFFA
}

// Match tracks one running match: lifecycle state, team assignment,
// eliminations, and kill/death counters. The participant list is captured at
// creation and does not follow later party mutations.
//
// All methods are safe for concurrent use; the lifecycle ordering itself
// (which transition happens when) is the match service's responsibility.
type Match struct {
	ID        string
	Mode      MatchMode
	Party     *Party
	Arena     *Arena
	Kit       *Kit
	StartedAt time.Time

	mu           sync.RWMutex
	state        MatchState
	participants []string
	teams        map[string]int
	eliminated   map[string]struct{}
	spectators   map[string]struct{}
	kills        map[string]int
	deaths       map[string]int
	teamCache    map[int][]string // nil means invalidated
	lastActivity time.Time
}

func NewMatch(id string, mode MatchMode, party *Party, arena *Arena, kit *Kit, now time.Time) *Match {
	return &Match{
		ID:           id,
		Mode:         mode,
		Party:        party,
		Arena:        arena,
		Kit:          kit,
		StartedAt:    now,
		state:        MatchStatePreparing,
		participants: party.Members(),
		teams:        make(map[string]int),
		eliminated:   make(map[string]struct{}),
		spectators:   make(map[string]struct{}),
		kills:        make(map[string]int),
		deaths:       make(map[string]int),
		lastActivity: now,
	}
}

func (m *Match) State() MatchState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Match) SetState(s MatchState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.lastActivity = time.Now()
}

func (m *Match) LastActivity() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastActivity
}

// Participants returns the player list captured at match creation.
func (m *Match) Participants() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.participants...)
}

func (m *Match) IsParticipant(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isParticipant(id)
}

func (m *Match) isParticipant(id string) bool {
	for _, p := range m.participants {
		if p == id {
			return true
		}
	}
	return false
}

// AssignTeams replaces the whole team map. Any cached per-team lookup is
// invalidated; callers must not hold team slices across a re-assignment.
func (m *Match) AssignTeams(teams map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams = make(map[string]int, len(teams))
	for id, team := range teams {
		m.teams[id] = team
	}
	m.teamCache = nil
}

// Team returns the team number for id, 0 if unassigned.
func (m *Match) Team(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.teams[id]
}

// SameTeam reports whether two participants share a non-zero team. Used by
// the damage-policy layer to suppress friendly fire in team modes.
func (m *Match) SameTeam(a, b string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ta, tb := m.teams[a], m.teams[b]
	return ta != 0 && ta == tb
}

// TeamMembers returns the participants assigned to the given team. The
// lookup is served from a cache rebuilt from the team map after any
// re-assignment.
func (m *Match) TeamMembers(team int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.teamCache == nil {
		m.rebuildTeamCache()
	}
	return append([]string(nil), m.teamCache[team]...)
}

// rebuildTeamCache must be called with the write lock held.
func (m *Match) rebuildTeamCache() {
	m.teamCache = make(map[int][]string)
	for _, id := range m.participants {
		team := m.teams[id]
		m.teamCache[team] = append(m.teamCache[team], id)
	}
}

// Eliminate marks a participant as out of the match, adds them to the
// spectator set, and increments their death counter. Returns false without
// mutation if the player is not a participant or was already eliminated, so
// death and disconnect events can both route through it safely.
func (m *Match) Eliminate(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isParticipant(id) {
		return false
	}
	if _, out := m.eliminated[id]; out {
		return false
	}
	m.eliminated[id] = struct{}{}
	m.spectators[id] = struct{}{}
	m.deaths[id]++
	m.lastActivity = time.Now()
	return true
}

// RecordKill credits a kill to the given participant. Kills by
// non-participants (environment, disconnected attackers) are ignored.
func (m *Match) RecordKill(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isParticipant(id) {
		return false
	}
	m.kills[id]++
	m.lastActivity = time.Now()
	return true
}

func (m *Match) IsEliminated(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.eliminated[id]
	return ok
}

func (m *Match) Eliminated() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.eliminated))
	for id := range m.eliminated {
		out = append(out, id)
	}
	return out
}

func (m *Match) Spectators() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.spectators))
	for id := range m.spectators {
		out = append(out, id)
	}
	return out
}

func (m *Match) IsSpectator(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.spectators[id]
	return ok
}

func (m *Match) Kills(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kills[id]
}

func (m *Match) Deaths(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deaths[id]
}

// Alive returns the participants not yet eliminated.
func (m *Match) Alive() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.participants))
	for _, id := range m.participants {
		if _, dead := m.eliminated[id]; !dead {
			out = append(out, id)
		}
	}
	return out
}

func (m *Match) AliveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.participants) - len(m.eliminated)
}

// aliveTeams must be called with at least the read lock held.
func (m *Match) aliveTeams() map[int]int {
	teams := make(map[int]int)
	for _, id := range m.participants {
		if _, dead := m.eliminated[id]; dead {
			continue
		}
		teams[m.teams[id]]++
	}
	return teams
}

// IsFinished reports whether the win condition holds: at most one player
// alive for FFA, at most one team with a living member for team modes.
func (m *Match) IsFinished() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.Mode.TeamBased() {
		return len(m.participants)-len(m.eliminated) <= 1
	}
	return len(m.aliveTeams()) <= 1
}

// WinningTeam returns the only team with living members, or 0 when no team
// has won yet (or the mode is not team based).
func (m *Match) WinningTeam() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.Mode.TeamBased() {
		return 0
	}
	alive := m.aliveTeams()
	if len(alive) != 1 {
		return 0
	}
	for team := range alive {
		return team
	}
	return 0
}

// Winners returns the surviving participants once the match is decided:
// the last player standing for FFA, the members of the winning team
// otherwise. Empty until the win condition holds.
func (m *Match) Winners() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.Mode.TeamBased() {
		if len(m.participants)-len(m.eliminated) > 1 {
			return nil
		}
		var out []string
		for _, id := range m.participants {
			if _, dead := m.eliminated[id]; !dead {
				out = append(out, id)
			}
		}
		return out
	}
	alive := m.aliveTeams()
	if len(alive) != 1 {
		return nil
	}
	var winning int
	for team := range alive {
		winning = team
	}
	var out []string
	for _, id := range m.participants {
		if m.teams[id] == winning {
			out = append(out, id)
		}
	}
	return out
}
