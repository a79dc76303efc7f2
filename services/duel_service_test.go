package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/practice-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuelChallengeValidation(t *testing.T) {
	env := newTestEnv(t)
	env.addKit(t, "sword")

	_, err := env.duels.Challenge("alice", "bob", "sword", 0)
	assert.ErrorIs(t, err, ErrInvalidRounds)
	_, err = env.duels.Challenge("alice", "bob", "sword", 11)
	assert.ErrorIs(t, err, ErrInvalidRounds)

	_, err = env.duels.Challenge("alice", "alice", "sword", 1)
	assert.ErrorIs(t, err, ErrSelfChallenge)

	_, err = env.duels.Challenge("alice", "bob", "missing", 1)
	assert.ErrorIs(t, err, ErrKitNotFound)

	env.directory.setOffline("bob", true)
	_, err = env.duels.Challenge("alice", "bob", "sword", 1)
	assert.ErrorIs(t, err, ErrTargetOffline)
}

func TestDuelOnePendingChallengePerTarget(t *testing.T) {
	env := newTestEnv(t)
	env.addKit(t, "sword")

	_, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)

	_, err = env.duels.Challenge("carol", "bob", "sword", 1)
	assert.ErrorIs(t, err, ErrPendingChallengeExists)

	// A different target is fine.
	_, err = env.duels.Challenge("carol", "dave", "sword", 1)
	assert.NoError(t, err)
}

func TestDuelChallengeExpires(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")

	d, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)

	env.sched.Advance(60 * time.Second)

	_, err = env.duels.Accept("bob", d.Token)
	assert.ErrorIs(t, err, ErrNoPendingChallenge)

	// The slot frees up for a new challenge.
	_, err = env.duels.Challenge("carol", "bob", "sword", 1)
	assert.NoError(t, err)
}

func TestDuelAcceptOnlyByTarget(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")

	d, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)

	_, err = env.duels.Accept("alice", d.Token)
	assert.ErrorIs(t, err, ErrNotChallengeTarget)
	err = env.duels.Decline("alice", d.Token)
	assert.ErrorIs(t, err, ErrNotChallengeTarget)

	_, err = env.duels.Accept("bob", "bogus-token")
	assert.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestDuelDeclineFreesTarget(t *testing.T) {
	env := newTestEnv(t)
	env.addKit(t, "sword")

	d, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)
	require.NoError(t, env.duels.Decline("bob", d.Token))

	// The token is single use.
	err = env.duels.Decline("bob", d.Token)
	assert.ErrorIs(t, err, ErrNoPendingChallenge)

	_, err = env.duels.Challenge("carol", "bob", "sword", 1)
	assert.NoError(t, err)
}

func TestDuelAcceptRejectedWhileBusy(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addArena(t, "second")
	env.addKit(t, "sword")
	env.addParty(t, "bob", "carol")

	d, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)

	_, err = env.matches.StartFFA("bob", "sword")
	require.NoError(t, err)

	_, err = env.duels.Accept("bob", d.Token)
	assert.ErrorIs(t, err, ErrPlayerInMatch)
}

func TestDuelMultiRoundFlow(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	require.NoError(t, env.arenas.SetRegenerate(context.Background(), "main", true))
	env.addKit(t, "sword")

	challenge, err := env.duels.Challenge("alice", "bob", "sword", 2)
	require.NoError(t, err)

	d, err := env.duels.Accept("bob", challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStateCountdown, d.State())
	assert.Equal(t, 1, d.Round())
	assert.True(t, env.world.isFrozen("alice"))
	assert.True(t, env.world.isFrozen("bob"))

	arena, err := env.arenas.Get("main")
	require.NoError(t, err)
	assert.True(t, arena.InUse)

	env.advanceCountdown()
	assert.Equal(t, models.DuelStateActive, d.State())
	assert.False(t, env.world.isFrozen("alice"))

	// Round 1 goes to alice.
	env.duels.HandleDeath("bob", "alice")
	assert.Equal(t, 1, d.Wins("alice"))
	assert.Equal(t, models.DuelStateEnding, d.State())

	// Round reset: arena regenerates and inventories restore from the
	// round-one snapshot.
	env.sched.Advance(3 * time.Second)
	assert.Equal(t, models.DuelStateCountdown, d.State())
	assert.Equal(t, 2, d.Round())
	assert.Equal(t, 1, env.world.regens)
	require.Len(t, env.world.restoredFor("alice"), 1)
	require.Len(t, env.world.restoredFor("bob"), 1)

	env.advanceCountdown()
	env.duels.HandleDeath("bob", "alice")
	assert.Equal(t, 2, d.Wins("alice"))
	assert.Contains(t, env.notifier.titlesFor("alice"), "VICTORY")
	assert.Contains(t, env.notifier.titlesFor("bob"), "DEFEAT")
	assert.False(t, arena.InUse)

	env.sched.Advance(3 * time.Second)
	assert.Equal(t, models.DuelStateFinished, d.State())
	assert.False(t, env.duels.InDuel("alice"))
	assert.True(t, env.world.isInLobby("alice"))
	assert.True(t, env.world.isInLobby("bob"))
}

func TestDuelRoundSwapsWins(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")

	challenge, err := env.duels.Challenge("alice", "bob", "sword", 2)
	require.NoError(t, err)
	d, err := env.duels.Accept("bob", challenge.Token)
	require.NoError(t, err)

	env.advanceCountdown()
	env.duels.HandleDeath("alice", "bob")
	env.sched.Advance(3 * time.Second)
	env.advanceCountdown()
	env.duels.HandleDeath("bob", "alice")

	assert.Equal(t, 1, d.Wins("alice"))
	assert.Equal(t, 1, d.Wins("bob"))
	assert.Equal(t, models.DuelStateEnding, d.State())
}

func TestDuelDisconnectCancelsPending(t *testing.T) {
	env := newTestEnv(t)
	env.addKit(t, "sword")

	d, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)

	env.duels.HandleDisconnect("alice")

	_, err = env.duels.Accept("bob", d.Token)
	assert.ErrorIs(t, err, ErrNoPendingChallenge)
}

func TestDuelDisconnectForfeitsActive(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")

	challenge, err := env.duels.Challenge("alice", "bob", "sword", 3)
	require.NoError(t, err)
	d, err := env.duels.Accept("bob", challenge.Token)
	require.NoError(t, err)
	env.advanceCountdown()

	// Mid-series disconnect hands the whole duel to the opponent.
	env.duels.HandleDisconnect("bob")
	assert.Equal(t, models.DuelStateEnding, d.State())
	assert.Contains(t, env.notifier.titlesFor("alice"), "VICTORY")

	env.sched.Advance(3 * time.Second)
	assert.Equal(t, models.DuelStateFinished, d.State())
	assert.False(t, env.duels.InDuel("alice"))
}

func TestDuelDeathIgnoredDuringCountdown(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")

	challenge, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)
	d, err := env.duels.Accept("bob", challenge.Token)
	require.NoError(t, err)

	env.duels.HandleDeath("bob", "alice")
	assert.Equal(t, 0, d.Wins("alice"))
	assert.Equal(t, models.DuelStateCountdown, d.State())
}

func TestDuelAcceptClonesWhenArenasBusy(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")
	env.addKit(t, "sword")
	env.arenas.Reserve("main")

	challenge, err := env.duels.Challenge("alice", "bob", "sword", 1)
	require.NoError(t, err)
	d, err := env.duels.Accept("bob", challenge.Token)
	require.NoError(t, err)
	assert.Equal(t, "main_1", d.Arena().Name)

	env.advanceCountdown()
	env.duels.HandleDeath("bob", "alice")
	env.sched.Advance(3 * time.Second)

	// The cloned instance disappears once the duel tears down.
	_, err = env.arenas.Get("main_1")
	assert.ErrorIs(t, err, ErrArenaNotFound)
}
