package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/repositories"
	"github.com/Dosada05/practice-system/scheduler"
	"github.com/stretchr/testify/require"
)

// In-memory fakes for the collaborator interfaces and repositories. The
// world fake records commands so tests can assert on side effects.

type fakeDirectory struct {
	mu      sync.Mutex
	offline map[string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{offline: make(map[string]bool)}
}

func (d *fakeDirectory) IsOnline(playerID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.offline[playerID]
}

func (d *fakeDirectory) DisplayName(playerID string) string { return playerID }

func (d *fakeDirectory) setOffline(playerID string, off bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offline[playerID] = off
}

type teleportCall struct {
	player string
	pos    models.Position
}

type fakeWorld struct {
	mu          sync.Mutex
	teleports   []teleportCall
	frozen      map[string]bool
	spectator   map[string]bool
	kitsGiven   map[string]int
	inLobby     map[string]bool
	snapshotSeq int
	restored    map[string][]models.InventorySnapshot
	regens      int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		frozen:    make(map[string]bool),
		spectator: make(map[string]bool),
		kitsGiven: make(map[string]int),
		inLobby:   make(map[string]bool),
		restored:  make(map[string][]models.InventorySnapshot),
	}
}

func (w *fakeWorld) Teleport(playerID string, pos models.Position) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.teleports = append(w.teleports, teleportCall{player: playerID, pos: pos})
	w.inLobby[playerID] = false
}

func (w *fakeWorld) Reset(playerID string)          {}
func (w *fakeWorld) ClearInventory(playerID string) {}

func (w *fakeWorld) GiveKit(playerID string, kit *models.Kit) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.kitsGiven[playerID]++
}

func (w *fakeWorld) SetFrozen(playerID string, frozen bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frozen[playerID] = frozen
}

func (w *fakeWorld) SetSpectator(playerID string, spectating bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spectator[playerID] = spectating
}

func (w *fakeWorld) SendToLobby(playerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inLobby[playerID] = true
}

func (w *fakeWorld) SnapshotInventory(playerID string) models.InventorySnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshotSeq++
	return models.InventorySnapshot(fmt.Sprintf("inv:%s:%d", playerID, w.snapshotSeq))
}

func (w *fakeWorld) RestoreInventory(playerID string, snap models.InventorySnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.restored[playerID] = append(w.restored[playerID], snap)
}

func (w *fakeWorld) RegenerateArena(arena *models.Arena) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.regens++
}

func (w *fakeWorld) isFrozen(playerID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frozen[playerID]
}

func (w *fakeWorld) isSpectator(playerID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spectator[playerID]
}

func (w *fakeWorld) isInLobby(playerID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inLobby[playerID]
}

func (w *fakeWorld) restoredFor(playerID string) []models.InventorySnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.InventorySnapshot(nil), w.restored[playerID]...)
}

func (w *fakeWorld) lastTeleport(playerID string) (models.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := len(w.teleports) - 1; i >= 0; i-- {
		if w.teleports[i].player == playerID {
			return w.teleports[i].pos, true
		}
	}
	return models.Position{}, false
}

type recordedEvent struct {
	matchID string
	event   string
	payload any
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
	titles   map[string][]string
	events   []recordedEvent
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		messages: make(map[string][]string),
		titles:   make(map[string][]string),
	}
}

func (n *fakeNotifier) Message(playerID string, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[playerID] = append(n.messages[playerID], text)
}

func (n *fakeNotifier) Title(playerID string, title, subtitle string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles[playerID] = append(n.titles[playerID], title)
}

func (n *fakeNotifier) MatchEvent(matchID string, event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{matchID: matchID, event: event, payload: payload})
}

func (n *fakeNotifier) titlesFor(playerID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.titles[playerID]...)
}

func (n *fakeNotifier) countEvents(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.event == event {
			count++
		}
	}
	return count
}

type fakeArenaRepo struct {
	mu     sync.Mutex
	arenas map[string]*models.Arena
}

func newFakeArenaRepo() *fakeArenaRepo {
	return &fakeArenaRepo{arenas: make(map[string]*models.Arena)}
}

func (r *fakeArenaRepo) Create(ctx context.Context, arena *models.Arena) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.arenas[arena.Name]; exists {
		return repositories.ErrArenaNameConflict
	}
	r.arenas[arena.Name] = arena
	return nil
}

func (r *fakeArenaRepo) GetByName(ctx context.Context, name string) (*models.Arena, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	arena, ok := r.arenas[name]
	if !ok {
		return nil, repositories.ErrArenaNotFound
	}
	return arena, nil
}

func (r *fakeArenaRepo) GetAll(ctx context.Context) ([]*models.Arena, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Arena, 0, len(r.arenas))
	for _, a := range r.arenas {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeArenaRepo) Update(ctx context.Context, arena *models.Arena) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.arenas[arena.Name]; !ok {
		return repositories.ErrArenaNotFound
	}
	r.arenas[arena.Name] = arena
	return nil
}

func (r *fakeArenaRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.arenas[name]; !ok {
		return repositories.ErrArenaNotFound
	}
	delete(r.arenas, name)
	return nil
}

type fakeKitRepo struct {
	mu   sync.Mutex
	kits map[string]*models.Kit
}

func newFakeKitRepo() *fakeKitRepo {
	return &fakeKitRepo{kits: make(map[string]*models.Kit)}
}

func (r *fakeKitRepo) Create(ctx context.Context, kit *models.Kit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kits[kit.ID]; exists {
		return repositories.ErrKitNameConflict
	}
	r.kits[kit.ID] = kit
	return nil
}

func (r *fakeKitRepo) GetByID(ctx context.Context, id string) (*models.Kit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kit, ok := r.kits[id]
	if !ok {
		return nil, repositories.ErrKitNotFound
	}
	return kit, nil
}

func (r *fakeKitRepo) GetAll(ctx context.Context) ([]*models.Kit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Kit, 0, len(r.kits))
	for _, k := range r.kits {
		out = append(out, k)
	}
	return out, nil
}

func (r *fakeKitRepo) UpdateIcon(ctx context.Context, id, iconKey, iconURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kit, ok := r.kits[id]
	if !ok {
		return repositories.ErrKitNotFound
	}
	kit.IconKey = iconKey
	kit.IconURL = iconURL
	return nil
}

func (r *fakeKitRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kits[id]; !ok {
		return repositories.ErrKitNotFound
	}
	delete(r.kits, id)
	return nil
}

// testEnv wires the full service stack against fakes and virtual time.
type testEnv struct {
	sched     *scheduler.Manual
	directory *fakeDirectory
	world     *fakeWorld
	notifier  *fakeNotifier

	arenas  ArenaService
	kits    KitService
	parties PartyService
	matches MatchService
	duels   DuelService
	queue   QueueService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		sched:     scheduler.NewManual(),
		directory: newFakeDirectory(),
		world:     newFakeWorld(),
		notifier:  newFakeNotifier(),
	}
	env.arenas = NewArenaService(newFakeArenaRepo())
	env.kits = NewKitService(newFakeKitRepo(), nil)
	env.parties = NewPartyService(env.directory, env.notifier, env.sched, log)
	env.matches = NewMatchService(env.arenas, env.kits, env.parties, env.world, env.notifier, env.sched, log)
	env.duels = NewDuelService(env.arenas, env.kits, env.matches, env.directory, env.world, env.notifier, env.sched, log)
	env.matches.BindDuelLookup(env.duels)
	env.queue = NewQueueService(env.kits, env.parties, env.matches, env.duels, env.directory, env.notifier, log)
	return env
}

func (e *testEnv) addArena(t *testing.T, name string) *models.Arena {
	t.Helper()
	ctx := context.Background()
	arena, err := e.arenas.Create(ctx, name)
	require.NoError(t, err)
	anchors := []string{AnchorCenter, AnchorSpawnA, AnchorSpawnB, AnchorCornerA, AnchorCornerB}
	for i, anchor := range anchors {
		pos := models.Position{World: "arenas", X: float64(i * 10), Y: 64, Z: 0}
		require.NoError(t, e.arenas.SetAnchor(ctx, name, anchor, pos))
	}
	return arena
}

func (e *testEnv) addKit(t *testing.T, id string) *models.Kit {
	t.Helper()
	kit, err := e.kits.Create(context.Background(), id, id)
	require.NoError(t, err)
	return kit
}

func (e *testEnv) addParty(t *testing.T, leader string, members ...string) *models.Party {
	t.Helper()
	party, err := e.parties.Create(leader)
	require.NoError(t, err)
	for _, m := range members {
		require.NoError(t, e.parties.Invite(leader, m))
		require.NoError(t, e.parties.Accept(m, leader))
	}
	return party
}

// advanceCountdown runs the standard pre-fight countdown to completion.
func (e *testEnv) advanceCountdown() {
	e.sched.Advance(5 * time.Second)
}
