package services

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/Dosada05/practice-system/game"
	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/scheduler"
	"github.com/google/uuid"
)

const (
	countdownTicks    = 5
	countdownInterval = time.Second
	// cleanupDelay lets result announcements display before participants
	// are teleported away.
	cleanupDelay = 3 * time.Second
)

// DuelLookup is the slice of the duel registry the match and queue entry
// paths need for their busy checks.
type DuelLookup interface {
	InDuel(playerID string) bool
}

// MatchService owns every running match, the player -> match reverse
// lookup, and the timers that drive lifecycle transitions. All mutation
// funnels through its methods; external events (deaths, disconnects) and
// timer callbacks may arrive interleaved and are serialized here.
type MatchService interface {
	StartFFA(leader, kitID string) (*models.Match, error)
	StartSplit(leader, kitID string) (*models.Match, error)
	StartPartyVersus(leaderA, leaderB, kitID string) (*models.Match, error)
	// StartQueueMatch forms a match from pooled queue participants using a
	// freshly synthesized ephemeral party.
	StartQueueMatch(players []string, mode models.QueueMode, kitID string) (*models.Match, error)

	// HandleDeath records an elimination. killerID may be empty
	// (environmental death, disconnected attacker); that is not an error.
	HandleDeath(victimID, killerID string)
	// HandleDisconnect routes a disconnect through the same elimination
	// path as an in-game death.
	HandleDisconnect(playerID string)

	Get(id string) (*models.Match, bool)
	MatchByPlayer(playerID string) (*models.Match, bool)
	InMatch(playerID string) bool
	List() []*models.Match
	Shutdown()

	// BindDuelLookup wires the duel registry into the start-time busy
	// check. Bound after construction because the duel service itself
	// depends on MatchService.
	BindDuelLookup(duels DuelLookup)
}

// matchRuntime carries the timer state for one match. Guarded by the
// service mutex; never more than one countdown timer exists per match.
type matchRuntime struct {
	countdown     scheduler.Handle
	countdownLeft int
	cleanup       scheduler.Handle
	// linkedParties are the real parties behind the match, flagged busy for
	// its duration. For party-vs-party this is both source groups rather
	// than the combined ephemeral one.
	linkedParties []*models.Party
}

type matchService struct {
	arenas   ArenaService
	kits     KitService
	parties  PartyService
	world    game.World
	notifier game.Notifier
	sched    scheduler.Scheduler
	log      *slog.Logger
	rnd      *rand.Rand

	mu       sync.Mutex
	duels    DuelLookup
	matches  map[string]*models.Match
	byPlayer map[string]string
	runtime  map[string]*matchRuntime
}

func NewMatchService(
	arenas ArenaService,
	kits KitService,
	parties PartyService,
	world game.World,
	notifier game.Notifier,
	sched scheduler.Scheduler,
	log *slog.Logger,
) MatchService {
	return &matchService{
		arenas:   arenas,
		kits:     kits,
		parties:  parties,
		world:    world,
		notifier: notifier,
		sched:    sched,
		log:      log,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		matches:  make(map[string]*models.Match),
		byPlayer: make(map[string]string),
		runtime:  make(map[string]*matchRuntime),
	}
}

func (s *matchService) StartFFA(leader, kitID string) (*models.Match, error) {
	party, err := s.leaderParty(leader)
	if err != nil {
		return nil, err
	}
	members := party.Members()
	if len(members) < 2 {
		return nil, ErrPartyTooSmall
	}
	return s.start(party, models.ModeFFA, kitID, func() map[string]int {
		return assignFFA(members)
	})
}

func (s *matchService) StartSplit(leader, kitID string) (*models.Match, error) {
	party, err := s.leaderParty(leader)
	if err != nil {
		return nil, err
	}
	members := party.Members()
	if len(members) < 2 {
		return nil, ErrPartyTooSmall
	}
	return s.start(party, models.ModeSplit, kitID, func() map[string]int {
		return assignSplit(members, s.rnd)
	})
}

func (s *matchService) StartPartyVersus(leaderA, leaderB, kitID string) (*models.Match, error) {
	partyA, err := s.leaderParty(leaderA)
	if err != nil {
		return nil, err
	}
	partyB, err := s.leaderParty(leaderB)
	if err != nil {
		return nil, err
	}
	if s.parties.InMatch(partyB) {
		return nil, ErrPartyInMatch
	}
	membersA, membersB := partyA.Members(), partyB.Members()
	// The two groups fight as one combined ephemeral party.
	combined := models.NewPartyOf(append(append([]string(nil), membersA...), membersB...))
	return s.start(combined, models.ModePartyVersus, kitID, func() map[string]int {
		return assignPartyVersus(membersA, membersB)
	}, partyA, partyB)
}

func (s *matchService) StartQueueMatch(players []string, mode models.QueueMode, kitID string) (*models.Match, error) {
	if !mode.Valid() {
		return nil, ErrInvalidQueueMode
	}
	party := models.NewPartyOf(players)
	if party == nil || party.Size() < 2 {
		return nil, ErrPartyTooSmall
	}
	return s.start(party, mode.MatchMode(), kitID, func() map[string]int {
		return assignQueue(players, mode.PlayersPerTeam(), s.rnd)
	})
}

func (s *matchService) leaderParty(leader string) (*models.Party, error) {
	party, ok := s.parties.Get(leader)
	if !ok {
		return nil, ErrPartyNotFound
	}
	if party.Leader != leader {
		return nil, ErrNotPartyLeader
	}
	if s.parties.InMatch(party) {
		return nil, ErrPartyInMatch
	}
	return party, nil
}

func (s *matchService) BindDuelLookup(duels DuelLookup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duels = duels
}

// start performs the PREPARING work and schedules the countdown. A failed
// validation leaves every registry exactly as before the call.
func (s *matchService) start(party *models.Party, mode models.MatchMode, kitID string, teamsFn func() map[string]int, linked ...*models.Party) (*models.Match, error) {
	kit, err := s.kits.Get(kitID)
	if err != nil {
		return nil, err
	}

	// Duel engagement is checked outside the registry lock; the duel
	// service takes its own lock and calls back into InMatch.
	s.mu.Lock()
	duels := s.duels
	s.mu.Unlock()
	if duels != nil {
		for _, p := range party.Members() {
			if duels.InDuel(p) {
				return nil, ErrPlayerInMatch
			}
		}
	}

	s.mu.Lock()
	for _, p := range party.Members() {
		if _, busy := s.byPlayer[p]; busy {
			s.mu.Unlock()
			return nil, ErrPlayerInMatch
		}
	}
	arena, err := s.arenas.Allocate(kitID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.arenas.Reserve(arena.Name)

	id := uuid.NewString()
	m := models.NewMatch(id, mode, party, arena, kit, time.Now())
	m.AssignTeams(teamsFn())

	s.matches[id] = m
	for _, p := range m.Participants() {
		s.byPlayer[p] = id
	}
	if len(linked) == 0 {
		linked = []*models.Party{party}
	}
	s.runtime[id] = &matchRuntime{countdownLeft: countdownTicks, linkedParties: linked}
	s.mu.Unlock()

	for _, lp := range linked {
		s.parties.SetInMatch(lp, true)
	}
	s.preparePlayers(m)
	m.SetState(models.MatchStateCountdown)

	handle := s.sched.Every(countdownInterval, func() { s.tickCountdown(id) })
	s.mu.Lock()
	if rt, ok := s.runtime[id]; ok {
		rt.countdown = handle
	} else {
		// The match was force-ended before the timer landed.
		handle.Cancel()
	}
	s.mu.Unlock()

	s.log.Info("match started",
		slog.String("match", id),
		slog.String("mode", string(mode)),
		slog.String("arena", arena.Name),
		slog.String("kit", kitID),
		slog.Int("players", len(m.Participants())))
	return m, nil
}

// preparePlayers heals, repositions, and equips everyone. Kits are granted
// here, before the countdown, so players can organize equipment while
// frozen.
func (s *matchService) preparePlayers(m *models.Match) {
	for _, p := range m.Participants() {
		s.world.Teleport(p, s.spawnFor(m, p))
		s.world.Reset(p)
		s.world.ClearInventory(p)
		s.world.GiveKit(p, m.Kit)
		s.world.SetFrozen(p, true)
		s.notifier.Message(p, fmt.Sprintf("Starting in %d...", countdownTicks))
	}
	s.notifier.MatchEvent(m.ID, "MATCH_STARTING", map[string]any{
		"mode":    m.Mode,
		"arena":   m.Arena.Name,
		"kit":     m.Kit.ID,
		"players": m.Participants(),
	})
}

func (s *matchService) spawnFor(m *models.Match, player string) models.Position {
	switch m.Team(player) {
	case 1:
		return *m.Arena.SpawnA
	case 2:
		return *m.Arena.SpawnB
	default:
		return *m.Arena.Center
	}
}

func (s *matchService) tickCountdown(id string) {
	s.mu.Lock()
	m, okM := s.matches[id]
	rt, okR := s.runtime[id]
	if !okM || !okR || m.State() != models.MatchStateCountdown {
		// Cancelled-but-already-fired race: the match moved on, stop the
		// timer and do nothing else.
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
		for _, p := range m.Alive() {
			s.notifier.Message(p, fmt.Sprintf("Starting in %d...", left))
		}
		s.notifier.MatchEvent(id, "COUNTDOWN", map[string]int{"seconds_left": left})
		return
	}

	if done != nil {
		done.Cancel()
	}
	m.SetState(models.MatchStateActive)
	for _, p := range m.Alive() {
		s.world.SetFrozen(p, false)
		s.notifier.Message(p, "Fight!")
	}
	s.notifier.MatchEvent(id, "MATCH_STARTED", nil)
}

func (s *matchService) HandleDeath(victimID, killerID string) {
	s.mu.Lock()
	id, ok := s.byPlayer[victimID]
	if !ok {
		s.mu.Unlock()
		return
	}
	m := s.matches[id]
	s.mu.Unlock()

	switch m.State() {
	case models.MatchStateEnding, models.MatchStateFinished:
		return
	}

	if !m.Eliminate(victimID) {
		// Already eliminated; nothing more to count.
		return
	}
	if killerID != "" && killerID != victimID {
		m.RecordKill(killerID)
	}
	s.world.SetSpectator(victimID, true)
	s.notifier.MatchEvent(id, "ELIMINATED", map[string]string{
		"player": victimID,
		"killer": killerID,
	})
	for _, p := range m.Participants() {
		s.notifier.Message(p, victimID+" was eliminated")
	}

	if m.IsFinished() {
		s.endMatch(m)
	}
}

func (s *matchService) HandleDisconnect(playerID string) {
	// Same invariant path as an in-game death; no killer attribution.
	s.HandleDeath(playerID, "")
}

// endMatch resolves the match exactly once: winner announcement, arena
// release, and the delayed final cleanup.
func (s *matchService) endMatch(m *models.Match) {
	s.mu.Lock()
	switch m.State() {
	case models.MatchStateEnding, models.MatchStateFinished:
		s.mu.Unlock()
		return
	}
	m.SetState(models.MatchStateEnding)
	rt := s.runtime[m.ID]
	var countdown scheduler.Handle
	if rt != nil {
		countdown = rt.countdown
		rt.countdown = nil
	}
	s.mu.Unlock()

	if countdown != nil {
		countdown.Cancel()
	}

	winners := m.Winners()
	winnerSet := make(map[string]bool, len(winners))
	for _, w := range winners {
		winnerSet[w] = true
	}
	for _, p := range m.Participants() {
		if winnerSet[p] {
			s.notifier.Title(p, "VICTORY", "")
		} else {
			s.notifier.Title(p, "DEFEAT", "")
		}
	}
	s.notifier.MatchEvent(m.ID, "MATCH_ENDED", map[string]any{
		"winners":      winners,
		"winning_team": m.WinningTeam(),
	})

	s.arenas.Release(m.Arena.Name)

	handle := s.sched.After(cleanupDelay, func() { s.finalize(m.ID) })
	s.mu.Lock()
	if rt, ok := s.runtime[m.ID]; ok {
		rt.cleanup = handle
	}
	s.mu.Unlock()

	s.log.Info("match ended",
		slog.String("match", m.ID),
		slog.Int("winning_team", m.WinningTeam()),
		slog.Int("winners", len(winners)))
}

// finalize runs after the cleanup delay: player state reset, registry
// removal, FINISHED.
func (s *matchService) finalize(id string) {
	s.mu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	rt := s.runtime[id]
	delete(s.matches, id)
	for _, p := range m.Participants() {
		if s.byPlayer[p] == id {
			delete(s.byPlayer, p)
		}
	}
	delete(s.runtime, id)
	s.mu.Unlock()

	for _, p := range m.Participants() {
		s.world.SetSpectator(p, false)
		s.world.Reset(p)
		s.world.ClearInventory(p)
		s.world.SendToLobby(p)
	}
	linked := []*models.Party{m.Party}
	if rt != nil && len(rt.linkedParties) > 0 {
		linked = rt.linkedParties
	}
	for _, lp := range linked {
		s.parties.SetInMatch(lp, false)
	}
	m.SetState(models.MatchStateFinished)
	s.notifier.MatchEvent(id, "MATCH_FINISHED", nil)
}

func (s *matchService) Get(id string) (*models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	return m, ok
}

func (s *matchService) MatchByPlayer(playerID string) (*models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	m, ok := s.matches[id]
	return m, ok
}

func (s *matchService) InMatch(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byPlayer[playerID]
	return ok
}

func (s *matchService) List() []*models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m)
	}
	return out
}

// Shutdown cancels every outstanding timer and releases every reservation
// so nothing leaks across a restart.
func (s *matchService) Shutdown() {
	s.mu.Lock()
	matches := make([]*models.Match, 0, len(s.matches))
	handles := make([]scheduler.Handle, 0, len(s.runtime))
	var parties []*models.Party
	for _, m := range s.matches {
		matches = append(matches, m)
	}
	for _, rt := range s.runtime {
		if rt.countdown != nil {
			handles = append(handles, rt.countdown)
		}
		if rt.cleanup != nil {
			handles = append(handles, rt.cleanup)
		}
		parties = append(parties, rt.linkedParties...)
	}
	s.matches = make(map[string]*models.Match)
	s.byPlayer = make(map[string]string)
	s.runtime = make(map[string]*matchRuntime)
	s.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
	for _, m := range matches {
		s.arenas.Release(m.Arena.Name)
		m.SetState(models.MatchStateFinished)
	}
	for _, p := range parties {
		s.parties.SetInMatch(p, false)
	}
}
