package services

import (
	"context"
	"testing"

	"github.com/Dosada05/practice-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocatePrefersNameOrder(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "bravo")
	env.addArena(t, "alpha")

	arena, err := env.arenas.Allocate("any")
	require.NoError(t, err)
	assert.Equal(t, "alpha", arena.Name)
}

func TestArenaAllocateSkipsIncompleteAndReserved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.arenas.Create(ctx, "halfbuilt")
	require.NoError(t, err)
	env.addArena(t, "ready")

	arena, err := env.arenas.Allocate("any")
	require.NoError(t, err)
	assert.Equal(t, "ready", arena.Name)

	env.arenas.Reserve("ready")
	_, err = env.arenas.Allocate("any")
	assert.ErrorIs(t, err, ErrNoArenaAvailable)

	env.arenas.Release("ready")
	arena, err = env.arenas.Allocate("any")
	require.NoError(t, err)
	assert.Equal(t, "ready", arena.Name)
}

func TestArenaAllocateHonorsKitAllowList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addArena(t, "swordhall")
	require.NoError(t, env.arenas.SetKits(ctx, "swordhall", []string{"sword"}))

	_, err := env.arenas.Allocate("bow")
	assert.ErrorIs(t, err, ErrNoArenaAvailable)

	arena, err := env.arenas.Allocate("sword")
	require.NoError(t, err)
	assert.Equal(t, "swordhall", arena.Name)
}

func TestArenaReleaseIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.addArena(t, "main")

	env.arenas.Reserve("main")
	env.arenas.Release("main")
	env.arenas.Release("main")

	arena, err := env.arenas.Allocate("any")
	require.NoError(t, err)
	assert.False(t, arena.InUse)
}

func TestArenaCloneLifecycle(t *testing.T) {
	env := newTestEnv(t)
	template := env.addArena(t, "main")
	env.arenas.Reserve("main")

	clone, err := env.arenas.AllocateOrClone("any")
	require.NoError(t, err)
	assert.Equal(t, "main_1", clone.Name)
	assert.True(t, clone.Complete())
	// The clone is translated away from the template region.
	assert.Equal(t, template.Center.X+cloneOffsetStep, clone.Center.X)
	assert.Equal(t, template.Center.Z, clone.Center.Z)

	env.arenas.Reserve(clone.Name)
	env.arenas.Release(clone.Name)

	// Released clones leave the registry entirely.
	_, err = env.arenas.Get(clone.Name)
	assert.ErrorIs(t, err, ErrArenaNotFound)
	_, err = env.arenas.Get("main")
	assert.NoError(t, err)
}

func TestArenaCloneRequiresCompleteTemplate(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.arenas.Create(context.Background(), "halfbuilt")
	require.NoError(t, err)

	_, err = env.arenas.AllocateOrClone("any")
	assert.ErrorIs(t, err, ErrNoArenaAvailable)
}

func TestArenaDeleteRejectedWhileReserved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addArena(t, "main")
	env.arenas.Reserve("main")

	err := env.arenas.Delete(ctx, "main")
	assert.ErrorIs(t, err, ErrArenaReserved)

	env.arenas.Release("main")
	require.NoError(t, env.arenas.Delete(ctx, "main"))
	_, err = env.arenas.Get("main")
	assert.ErrorIs(t, err, ErrArenaNotFound)
}

func TestArenaCreateNameConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.arenas.Create(ctx, "main")
	require.NoError(t, err)

	_, err = env.arenas.Create(ctx, "main")
	assert.ErrorIs(t, err, ErrArenaNameConflict)
}

func TestArenaSetAnchorUnknownName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addArena(t, "main")

	err := env.arenas.SetAnchor(ctx, "main", "roof", models.Position{})
	assert.ErrorIs(t, err, ErrInvalidAnchor)
	err = env.arenas.SetAnchor(ctx, "missing", AnchorCenter, models.Position{})
	assert.ErrorIs(t, err, ErrArenaNotFound)
}
