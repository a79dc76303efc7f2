package services

import (
	"testing"
	"time"

	"github.com/Dosada05/practice-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFFALifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	party := env.addParty(t, "alice", "bob")

	m, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStateCountdown, m.State())
	assert.True(t, env.parties.InMatch(party))
	assert.True(t, env.world.isFrozen("alice"))
	assert.True(t, env.world.isFrozen("bob"))

	arena, err := env.arenas.Get("main")
	require.NoError(t, err)
	assert.True(t, arena.InUse)

	env.advanceCountdown()
	assert.Equal(t, models.MatchStateActive, m.State())
	assert.False(t, env.world.isFrozen("alice"))
	assert.Equal(t, 1, env.notifier.countEvents("MATCH_STARTED"))

	env.matches.HandleDeath("bob", "alice")
	assert.Equal(t, models.MatchStateEnding, m.State())
	assert.True(t, env.world.isSpectator("bob"))
	assert.Equal(t, []string{"alice"}, m.Winners())
	assert.Contains(t, env.notifier.titlesFor("alice"), "VICTORY")
	assert.Contains(t, env.notifier.titlesFor("bob"), "DEFEAT")

	// Arena frees at ENDING, before the delayed cleanup.
	assert.False(t, arena.InUse)

	env.sched.Advance(3 * time.Second)
	assert.Equal(t, models.MatchStateFinished, m.State())
	assert.False(t, env.matches.InMatch("alice"))
	assert.False(t, env.parties.InMatch(party))
	assert.True(t, env.world.isInLobby("alice"))
	assert.True(t, env.world.isInLobby("bob"))
	assert.False(t, env.world.isSpectator("bob"))
	_, ok := env.matches.Get(m.ID)
	assert.False(t, ok)
}

func TestMatchCountdownTicksBeforeActive(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "alice", "bob")

	m, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)

	env.sched.Advance(4 * time.Second)
	assert.Equal(t, models.MatchStateCountdown, m.State())
	assert.True(t, env.world.isFrozen("alice"))

	env.sched.Advance(time.Second)
	assert.Equal(t, models.MatchStateActive, m.State())
}

func TestMatchEliminateIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "alice", "bob", "carol")

	m, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)
	env.advanceCountdown()

	env.matches.HandleDeath("bob", "alice")
	env.matches.HandleDeath("bob", "alice")

	assert.Equal(t, 1, m.Deaths("bob"))
	assert.Equal(t, 1, m.Kills("alice"))
	assert.Equal(t, 2, m.AliveCount())
	assert.Equal(t, 1, env.notifier.countEvents("ELIMINATED"))

	// Every eliminated participant is spectating.
	for _, p := range m.Eliminated() {
		assert.True(t, m.IsSpectator(p), "eliminated player %s must spectate", p)
	}
}

func TestMatchSplitTeamWin(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "p1", "p2", "p3", "p4")

	m, err := env.matches.StartSplit("p1", "sword")
	require.NoError(t, err)
	env.advanceCountdown()

	var teamOne, teamTwo []string
	for _, p := range m.Participants() {
		if m.Team(p) == 1 {
			teamOne = append(teamOne, p)
		} else {
			teamTwo = append(teamTwo, p)
		}
	}
	require.Len(t, teamOne, 2)
	require.Len(t, teamTwo, 2)

	env.matches.HandleDeath(teamOne[0], teamTwo[0])
	assert.Equal(t, models.MatchStateActive, m.State())

	env.matches.HandleDeath(teamOne[1], teamTwo[1])
	assert.Equal(t, models.MatchStateEnding, m.State())
	assert.Equal(t, 2, m.WinningTeam())
	assert.ElementsMatch(t, teamTwo, m.Winners())
}

func TestMatchDisconnectEliminates(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "alice", "bob", "carol")

	m, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)
	env.advanceCountdown()

	env.matches.HandleDisconnect("bob")
	assert.True(t, m.IsEliminated("bob"))
	assert.Equal(t, 0, m.Kills("alice"))
	assert.Equal(t, models.MatchStateActive, m.State())

	env.matches.HandleDisconnect("carol")
	assert.Equal(t, models.MatchStateEnding, m.State())
	assert.Equal(t, []string{"alice"}, m.Winners())
}

func TestMatchEndsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "alice", "bob")

	_, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)
	env.advanceCountdown()

	env.matches.HandleDeath("bob", "alice")
	env.matches.HandleDeath("bob", "alice")
	env.matches.HandleDisconnect("alice")

	assert.Equal(t, 1, env.notifier.countEvents("MATCH_ENDED"))
}

func TestMatchStartValidation(t *testing.T) {
	env := newTestEnv(t)
	env.addKit(t, "sword")
	env.addParty(t, "solo")

	_, err := env.matches.StartFFA("solo", "sword")
	assert.ErrorIs(t, err, ErrPartyTooSmall)

	env.addParty(t, "alice", "bob")
	_, err = env.matches.StartFFA("alice", "missing")
	assert.ErrorIs(t, err, ErrKitNotFound)

	_, err = env.matches.StartFFA("bob", "sword")
	assert.ErrorIs(t, err, ErrNotPartyLeader)

	// Still no arenas registered.
	_, err = env.matches.StartFFA("alice", "sword")
	assert.ErrorIs(t, err, ErrNoArenaAvailable)
	assert.False(t, env.matches.InMatch("alice"))
}

func TestMatchBusyPartyRejected(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "alice", "bob")

	_, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)

	_, err = env.matches.StartFFA("alice", "sword")
	assert.ErrorIs(t, err, ErrPartyInMatch)
}

func TestMatchPartyVersusTeamsAndCleanup(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	partyA := env.addParty(t, "a1", "a2")
	partyB := env.addParty(t, "b1", "b2")

	m, err := env.matches.StartPartyVersus("a1", "b1", "sword")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Team("a1"))
	assert.Equal(t, 1, m.Team("a2"))
	assert.Equal(t, 2, m.Team("b1"))
	assert.Equal(t, 2, m.Team("b2"))
	assert.True(t, env.parties.InMatch(partyA))
	assert.True(t, env.parties.InMatch(partyB))

	env.advanceCountdown()
	env.matches.HandleDeath("b1", "a1")
	env.matches.HandleDeath("b2", "a2")
	assert.Equal(t, 1, m.WinningTeam())

	env.sched.Advance(3 * time.Second)
	// Both source parties survive the match and are free again.
	assert.False(t, env.parties.InMatch(partyA))
	assert.False(t, env.parties.InMatch(partyB))
	_, ok := env.parties.Get("a1")
	assert.True(t, ok)
}

func TestMatchSpawnPlacementByTeam(t *testing.T) {
	env := newTestEnv(t)
	arena := env.addArena(t, "main")
	env.addKit(t, "sword")
	env.addParty(t, "a1", "a2")
	env.addParty(t, "b1", "b2")

	_, err := env.matches.StartPartyVersus("a1", "b1", "sword")
	require.NoError(t, err)

	posA, ok := env.world.lastTeleport("a1")
	require.True(t, ok)
	assert.Equal(t, *arena.SpawnA, posA)

	posB, ok := env.world.lastTeleport("b1")
	require.True(t, ok)
	assert.Equal(t, *arena.SpawnB, posB)
}

func TestMatchShutdownReleasesEverything(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	party := env.addParty(t, "alice", "bob")

	m, err := env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)

	env.matches.Shutdown()
	assert.Equal(t, models.MatchStateFinished, m.State())
	assert.False(t, env.parties.InMatch(party))

	arena, err := env.arenas.Get("main")
	require.NoError(t, err)
	assert.False(t, arena.InUse)

	// The countdown timer is gone; advancing does nothing.
	env.advanceCountdown()
	assert.Equal(t, models.MatchStateFinished, m.State())
}

func TestMatchStartRejectedDuringDuel(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addArena(t, "second")
	env.addKit(t, "sword")
	env.addParty(t, "alice", "bob")

	d, err := env.duels.Challenge("carol", "alice", "sword", 1)
	require.NoError(t, err)
	_, err = env.duels.Accept("alice", d.Token)
	require.NoError(t, err)
	env.advanceCountdown()

	// A duelling member blocks the whole party, from countdown onward.
	_, err = env.matches.StartFFA("alice", "sword")
	assert.ErrorIs(t, err, ErrPlayerInMatch)
	_, err = env.matches.StartSplit("alice", "sword")
	assert.ErrorIs(t, err, ErrPlayerInMatch)
	assert.False(t, env.matches.InMatch("bob"))

	// Once the duel fully tears down the party can fight again.
	env.duels.HandleDeath("carol", "alice")
	env.sched.Advance(3 * time.Second)

	_, err = env.matches.StartFFA("alice", "sword")
	require.NoError(t, err)
}
