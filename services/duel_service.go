package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/practice-system/game"
	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/scheduler"
	"github.com/google/uuid"
)

const (
	duelMaxRounds  = 10
	duelPendingTTL = 60 * time.Second
	// roundResetDelay separates round end from the next countdown so the
	// result is readable before players snap back to spawn.
	roundResetDelay = 3 * time.Second
)

// DuelService owns the pending-challenge book and every running duel.
// Challenges are addressed by a single-use token; duels reuse the match
// countdown cadence but add per-round win accounting and inventory
// snapshot restore between rounds.
type DuelService interface {
	// Challenge registers a pending duel against target. At most one
	// pending challenge may exist per target at a time.
	Challenge(challenger, target, kitID string, roundsToWin int) (*models.Duel, error)
	// Accept consumes the token and starts the duel. Only the challenge
	// target may accept.
	Accept(playerID, token string) (*models.Duel, error)
	Decline(playerID, token string) error

	HandleDeath(victimID, killerID string)
	// HandleDisconnect cancels the player's pending challenges and forfeits
	// their active duel to the opponent.
	HandleDisconnect(playerID string)

	Get(id string) (*models.Duel, bool)
	DuelByPlayer(playerID string) (*models.Duel, bool)
	InDuel(playerID string) bool
	List() []*models.Duel
	Shutdown()
}

// duelRuntime carries the timer state for one running duel. Guarded by the
// service mutex.
type duelRuntime struct {
	countdown     scheduler.Handle
	countdownLeft int
	next          scheduler.Handle
	cleanup       scheduler.Handle
}

type duelService struct {
	arenas    ArenaService
	kits      KitService
	matches   MatchService
	directory game.Directory
	world     game.World
	notifier  game.Notifier
	sched     scheduler.Scheduler
	log       *slog.Logger

	mu              sync.Mutex
	pending         map[string]*models.Duel // token -> pending duel
	pendingByTarget map[string]string       // target -> token
	pendingExpiry   map[string]scheduler.Handle
	duels           map[string]*models.Duel
	byPlayer        map[string]string
	runtime         map[string]*duelRuntime
}

func NewDuelService(
	arenas ArenaService,
	kits KitService,
	matches MatchService,
	directory game.Directory,
	world game.World,
	notifier game.Notifier,
	sched scheduler.Scheduler,
	log *slog.Logger,
) DuelService {
	return &duelService{
		arenas:          arenas,
		kits:            kits,
		matches:         matches,
		directory:       directory,
		world:           world,
		notifier:        notifier,
		sched:           sched,
		log:             log,
		pending:         make(map[string]*models.Duel),
		pendingByTarget: make(map[string]string),
		pendingExpiry:   make(map[string]scheduler.Handle),
		duels:           make(map[string]*models.Duel),
		byPlayer:        make(map[string]string),
		runtime:         make(map[string]*duelRuntime),
	}
}

func (s *duelService) Challenge(challenger, target, kitID string, roundsToWin int) (*models.Duel, error) {
	if roundsToWin < 1 || roundsToWin > duelMaxRounds {
		return nil, ErrInvalidRounds
	}
	if challenger == target {
		return nil, ErrSelfChallenge
	}
	if _, err := s.kits.Get(kitID); err != nil {
		return nil, err
	}
	if !s.directory.IsOnline(target) {
		return nil, ErrTargetOffline
	}

	s.mu.Lock()
	if _, exists := s.pendingByTarget[target]; exists {
		s.mu.Unlock()
		return nil, ErrPendingChallengeExists
	}
	token := uuid.NewString()
	d := models.NewDuel(uuid.NewString(), token, challenger, target, kitID, roundsToWin, time.Now())
	s.pending[token] = d
	s.pendingByTarget[target] = token
	s.mu.Unlock()

	handle := s.sched.After(duelPendingTTL, func() { s.expireChallenge(token) })
	s.mu.Lock()
	if _, ok := s.pending[token]; ok {
		s.pendingExpiry[token] = handle
	} else {
		// Resolved before the timer landed.
		handle.Cancel()
	}
	s.mu.Unlock()

	s.notifier.Message(target, fmt.Sprintf(
		"%s challenged you to a duel (%s, first to %d). Token: %s",
		challenger, kitID, roundsToWin, token))
	s.notifier.Message(challenger, "challenge sent to "+target)
	return d, nil
}

func (s *duelService) expireChallenge(token string) {
	d := s.removePending(token)
	if d == nil {
		return
	}
	s.notifier.Message(d.Challenger, "your challenge to "+d.Target+" expired")
	s.notifier.Message(d.Target, "the challenge from "+d.Challenger+" expired")
}

// removePending takes a pending challenge out of the book and cancels its
// expiry timer. Returns nil when the token is already spent.
func (s *duelService) removePending(token string) *models.Duel {
	s.mu.Lock()
	d, ok := s.pending[token]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.pending, token)
	delete(s.pendingByTarget, d.Target)
	expiry := s.pendingExpiry[token]
	delete(s.pendingExpiry, token)
	s.mu.Unlock()

	if expiry != nil {
		expiry.Cancel()
	}
	return d
}

func (s *duelService) Accept(playerID, token string) (*models.Duel, error) {
	s.mu.Lock()
	d, ok := s.pending[token]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoPendingChallenge
	}
	if playerID != d.Target {
		s.mu.Unlock()
		return nil, ErrNotChallengeTarget
	}
	for _, p := range d.Participants() {
		if _, busy := s.byPlayer[p]; busy {
			s.mu.Unlock()
			return nil, ErrPlayerInMatch
		}
	}
	s.mu.Unlock()

	for _, p := range d.Participants() {
		if s.matches.InMatch(p) {
			return nil, ErrPlayerInMatch
		}
	}
	if !s.directory.IsOnline(d.Challenger) {
		s.removePending(token)
		return nil, ErrTargetOffline
	}
	if _, err := s.kits.Get(d.KitID); err != nil {
		s.removePending(token)
		return nil, err
	}

	arena, err := s.arenas.AllocateOrClone(d.KitID)
	if err != nil {
		// Challenge stays pending; the target can retry while it lives.
		return nil, err
	}
	s.arenas.Reserve(arena.Name)

	if s.removePending(token) == nil {
		// Lost the race against expiry or disconnect.
		s.arenas.Release(arena.Name)
		return nil, ErrNoPendingChallenge
	}
	d.SetArena(arena)

	s.mu.Lock()
	s.duels[d.ID] = d
	for _, p := range d.Participants() {
		s.byPlayer[p] = d.ID
	}
	s.runtime[d.ID] = &duelRuntime{}
	s.mu.Unlock()

	s.log.Info("duel started",
		slog.String("duel", d.ID),
		slog.String("challenger", d.Challenger),
		slog.String("target", d.Target),
		slog.String("arena", arena.Name),
		slog.String("kit", d.KitID),
		slog.Int("rounds_to_win", d.RoundsToWin))

	s.startRound(d, true)
	return d, nil
}

func (s *duelService) Decline(playerID, token string) error {
	s.mu.Lock()
	d, ok := s.pending[token]
	if !ok {
		s.mu.Unlock()
		return ErrNoPendingChallenge
	}
	if playerID != d.Target {
		s.mu.Unlock()
		return ErrNotChallengeTarget
	}
	s.mu.Unlock()

	if s.removePending(token) == nil {
		return ErrNoPendingChallenge
	}
	s.notifier.Message(d.Challenger, d.Target+" declined your challenge")
	return nil
}

// startRound positions, equips, and freezes both sides, then schedules the
// countdown. The first round grants the kit and snapshots both inventories;
// later rounds restore the snapshot instead.
func (s *duelService) startRound(d *models.Duel, first bool) {
	round := d.BeginRound()
	arena := d.Arena()

	if !first && arena.Regenerate {
		s.world.RegenerateArena(arena)
	}

	d.SetState(models.DuelStatePreparing)
	spawns := map[string]models.Position{
		d.Challenger: *arena.SpawnA,
		d.Target:     *arena.SpawnB,
	}
	for _, p := range d.Participants() {
		s.world.Teleport(p, spawns[p])
		s.world.Reset(p)
		if first {
			s.world.ClearInventory(p)
			s.world.GiveKit(p, mustKit(s.kits, d.KitID))
			d.SetSnapshot(p, s.world.SnapshotInventory(p))
		} else if snap, ok := d.Snapshot(p); ok {
			s.world.RestoreInventory(p, snap)
		} else {
			s.world.ClearInventory(p)
			s.world.GiveKit(p, mustKit(s.kits, d.KitID))
		}
		s.world.SetFrozen(p, true)
		s.notifier.Message(p, fmt.Sprintf("Round %d starting in %d...", round, countdownTicks))
	}
	d.SetState(models.DuelStateCountdown)
	s.notifier.MatchEvent(d.ID, "ROUND_STARTING", map[string]int{"round": round})

	handle := s.sched.Every(countdownInterval, func() { s.tickCountdown(d.ID) })
	s.mu.Lock()
	if rt, ok := s.runtime[d.ID]; ok {
		rt.countdownLeft = countdownTicks
		rt.countdown = handle
	} else {
		handle.Cancel()
	}
	s.mu.Unlock()
}

// mustKit resolves a kit that existed when the duel was accepted. A deleted
// kit degrades to an empty placeholder rather than a nil dereference.
func mustKit(kits KitService, id string) *models.Kit {
	kit, err := kits.Get(id)
	if err != nil {
		return &models.Kit{ID: id, DisplayName: id}
	}
	return kit
}

func (s *duelService) tickCountdown(id string) {
	s.mu.Lock()
	d, okD := s.duels[id]
	rt, okR := s.runtime[id]
	if !okD || !okR || d.State() != models.DuelStateCountdown {
		if okR && rt.countdown != nil {
			rt.countdown.Cancel()
			rt.countdown = nil
		}
		s.mu.Unlock()
		return
	}
	rt.countdownLeft--
	left := rt.countdownLeft
	var done scheduler.Handle
	if left <= 0 {
		done = rt.countdown
		rt.countdown = nil
	}
	s.mu.Unlock()

	if left > 0 {
		for _, p := range d.Participants() {
			s.notifier.Message(p, fmt.Sprintf("Starting in %d...", left))
		}
		s.notifier.MatchEvent(id, "COUNTDOWN", map[string]int{"seconds_left": left})
		return
	}

	if done != nil {
		done.Cancel()
	}
	d.SetState(models.DuelStateActive)
	for _, p := range d.Participants() {
		s.world.SetFrozen(p, false)
		s.notifier.Message(p, "Fight!")
	}
	s.notifier.MatchEvent(id, "ROUND_STARTED", map[string]int{"round": d.Round()})
}

func (s *duelService) HandleDeath(victimID, killerID string) {
	s.mu.Lock()
	id, ok := s.byPlayer[victimID]
	if !ok {
		s.mu.Unlock()
		return
	}
	d := s.duels[id]
	s.mu.Unlock()

	if d.State() != models.DuelStateActive {
		return
	}

	winner := d.Opponent(victimID)
	wins := d.AddRoundWin(winner)
	s.notifier.MatchEvent(id, "ROUND_ENDED", map[string]any{
		"round":  d.Round(),
		"winner": winner,
		"score": map[string]int{
			d.Challenger: d.Wins(d.Challenger),
			d.Target:     d.Wins(d.Target),
		},
	})
	for _, p := range d.Participants() {
		s.notifier.Message(p, fmt.Sprintf("%s won round %d (%d-%d)",
			winner, d.Round(), d.Wins(d.Challenger), d.Wins(d.Target)))
	}

	if wins >= d.RoundsToWin {
		s.resolve(d, winner)
		return
	}

	d.SetState(models.DuelStateEnding)
	handle := s.sched.After(roundResetDelay, func() { s.nextRound(id) })
	s.mu.Lock()
	if rt, ok := s.runtime[id]; ok {
		rt.next = handle
	} else {
		handle.Cancel()
	}
	s.mu.Unlock()
}

func (s *duelService) nextRound(id string) {
	s.mu.Lock()
	d, ok := s.duels[id]
	if rt, okR := s.runtime[id]; okR {
		rt.next = nil
	}
	s.mu.Unlock()
	if !ok || d.State() != models.DuelStateEnding {
		return
	}
	s.startRound(d, false)
}

func (s *duelService) HandleDisconnect(playerID string) {
	// Pending challenges involving the player are torn down first.
	s.mu.Lock()
	var tokens []string
	for token, d := range s.pending {
		if d.IsParticipant(playerID) {
			tokens = append(tokens, token)
		}
	}
	s.mu.Unlock()
	for _, token := range tokens {
		if d := s.removePending(token); d != nil {
			s.notifier.Message(d.Opponent(playerID), "challenge cancelled: "+playerID+" disconnected")
		}
	}

	s.mu.Lock()
	id, ok := s.byPlayer[playerID]
	if !ok {
		s.mu.Unlock()
		return
	}
	d := s.duels[id]
	s.mu.Unlock()

	// A disconnect forfeits the whole duel, not just the round.
	s.resolve(d, d.Opponent(playerID))
}

// resolve ends the duel exactly once: winner announcement, arena release,
// delayed final cleanup.
func (s *duelService) resolve(d *models.Duel, winner string) {
	s.mu.Lock()
	switch d.State() {
	case models.DuelStateFinished:
		s.mu.Unlock()
		return
	}
	rt := s.runtime[d.ID]
	if rt != nil && rt.cleanup != nil {
		// Already resolving.
		s.mu.Unlock()
		return
	}
	d.SetState(models.DuelStateEnding)
	var countdown, next scheduler.Handle
	if rt != nil {
		countdown, next = rt.countdown, rt.next
		rt.countdown, rt.next = nil, nil
	}
	s.mu.Unlock()

	if countdown != nil {
		countdown.Cancel()
	}
	if next != nil {
		next.Cancel()
	}

	loser := d.Opponent(winner)
	s.notifier.Title(winner, "VICTORY", fmt.Sprintf("%d-%d", d.Wins(winner), d.Wins(loser)))
	s.notifier.Title(loser, "DEFEAT", fmt.Sprintf("%d-%d", d.Wins(loser), d.Wins(winner)))
	s.notifier.MatchEvent(d.ID, "DUEL_ENDED", map[string]any{
		"winner": winner,
		"score": map[string]int{
			d.Challenger: d.Wins(d.Challenger),
			d.Target:     d.Wins(d.Target),
		},
	})

	if arena := d.Arena(); arena != nil {
		s.arenas.Release(arena.Name)
	}

	handle := s.sched.After(cleanupDelay, func() { s.finalize(d.ID) })
	s.mu.Lock()
	if rt, ok := s.runtime[d.ID]; ok {
		rt.cleanup = handle
	}
	s.mu.Unlock()

	s.log.Info("duel ended",
		slog.String("duel", d.ID),
		slog.String("winner", winner))
}

func (s *duelService) finalize(id string) {
	s.mu.Lock()
	d, ok := s.duels[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.duels, id)
	for _, p := range d.Participants() {
		if s.byPlayer[p] == id {
			delete(s.byPlayer, p)
		}
	}
	delete(s.runtime, id)
	s.mu.Unlock()

	for _, p := range d.Participants() {
		s.world.SetFrozen(p, false)
		s.world.Reset(p)
		s.world.ClearInventory(p)
		s.world.SendToLobby(p)
	}
	d.SetState(models.DuelStateFinished)
	s.notifier.MatchEvent(id, "DUEL_FINISHED", nil)
}

func (s *duelService) Get(id string) (*models.Duel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[id]
	return d, ok
}

func (s *duelService) DuelByPlayer(playerID string) (*models.Duel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	d, ok := s.duels[id]
	return d, ok
}

func (s *duelService) InDuel(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byPlayer[playerID]
	return ok
}

func (s *duelService) List() []*models.Duel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Duel, 0, len(s.duels))
	for _, d := range s.duels {
		out = append(out, d)
	}
	return out
}

// Shutdown cancels every outstanding timer and releases every reservation.
func (s *duelService) Shutdown() {
	s.mu.Lock()
	duels := make([]*models.Duel, 0, len(s.duels))
	handles := make([]scheduler.Handle, 0, len(s.runtime)+len(s.pendingExpiry))
	for _, d := range s.duels {
		duels = append(duels, d)
	}
	for _, rt := range s.runtime {
		for _, h := range []scheduler.Handle{rt.countdown, rt.next, rt.cleanup} {
			if h != nil {
				handles = append(handles, h)
			}
		}
	}
	for _, h := range s.pendingExpiry {
		handles = append(handles, h)
	}
	s.pending = make(map[string]*models.Duel)
	s.pendingByTarget = make(map[string]string)
	s.pendingExpiry = make(map[string]scheduler.Handle)
	s.duels = make(map[string]*models.Duel)
	s.byPlayer = make(map[string]string)
	s.runtime = make(map[string]*duelRuntime)
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
	for _, d := range duels {
		if arena := d.Arena(); arena != nil {
			s.arenas.Release(arena.Name)
		}
		d.SetState(models.DuelStateFinished)
	}
}
