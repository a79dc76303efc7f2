package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatch(mode MatchMode, players ...string) *Match {
	party := NewPartyOf(players)
	arena := &Arena{Name: "test"}
	kit := &Kit{ID: "kit"}
	return NewMatch("m1", mode, party, arena, kit, time.Unix(0, 0))
}

func TestMatchEliminateIdempotent(t *testing.T) {
	m := testMatch(ModeFFA, "a", "b", "c")
	m.AssignTeams(map[string]int{"a": 0, "b": 0, "c": 0})

	assert.True(t, m.Eliminate("b"))
	assert.False(t, m.Eliminate("b"))
	assert.Equal(t, 1, m.Deaths("b"))
	assert.Equal(t, 2, m.AliveCount())
	assert.True(t, m.IsSpectator("b"))
}

func TestMatchEliminatedAreSpectators(t *testing.T) {
	m := testMatch(ModeFFA, "a", "b", "c", "d")
	m.AssignTeams(map[string]int{"a": 0, "b": 0, "c": 0, "d": 0})

	m.Eliminate("b")
	m.Eliminate("d")
	for _, p := range m.Eliminated() {
		assert.True(t, m.IsSpectator(p), "eliminated %s must be a spectator", p)
	}
}

func TestMatchFFAWinner(t *testing.T) {
	m := testMatch(ModeFFA, "a", "b", "c")
	m.AssignTeams(map[string]int{"a": 0, "b": 0, "c": 0})

	m.Eliminate("a")
	assert.False(t, m.IsFinished())
	m.Eliminate("b")
	assert.True(t, m.IsFinished())
	assert.Equal(t, []string{"c"}, m.Winners())
}

func TestMatchTeamWinCountsLivingMembers(t *testing.T) {
	m := testMatch(ModeSplit, "a1", "a2", "b1", "b2")
	m.AssignTeams(map[string]int{"a1": 1, "a2": 1, "b1": 2, "b2": 2})

	m.Eliminate("b1")
	assert.False(t, m.IsFinished())

	m.Eliminate("b2")
	require.True(t, m.IsFinished())
	assert.Equal(t, 1, m.WinningTeam())
	assert.ElementsMatch(t, []string{"a1", "a2"}, m.Winners())
}

func TestMatchTeamCacheInvalidatedByAssign(t *testing.T) {
	m := testMatch(ModeSplit, "a", "b")
	m.AssignTeams(map[string]int{"a": 1, "b": 2})
	assert.Equal(t, []string{"a"}, m.TeamMembers(1))

	m.AssignTeams(map[string]int{"a": 2, "b": 1})
	assert.Equal(t, []string{"b"}, m.TeamMembers(1))
	assert.True(t, m.SameTeam("a", "a"))
	assert.False(t, m.SameTeam("a", "b"))
}

func TestMatchKillAccounting(t *testing.T) {
	m := testMatch(ModeFFA, "a", "b", "c")
	m.AssignTeams(map[string]int{"a": 0, "b": 0, "c": 0})

	assert.True(t, m.RecordKill("a"))
	assert.True(t, m.RecordKill("a"))
	assert.False(t, m.RecordKill("stranger"))
	assert.Equal(t, 2, m.Kills("a"))
	assert.Equal(t, 0, m.Kills("b"))
}
