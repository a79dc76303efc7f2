package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/practice-system/game"
	"github.com/Dosada05/practice-system/models"
)

// QueueService pools players per (mode, kit) bucket and forms matches the
// moment a bucket reaches its quota, strictly first-in first-out. A player
// occupies at most one bucket at a time; joining again moves them.
type QueueService interface {
	Join(playerID string, mode models.QueueMode, kitID string) error
	// Leave removes the player from whatever bucket holds them. Leaving
	// while not queued is a no-op.
	Leave(playerID string)
	HandleDisconnect(playerID string)
	Depth(mode models.QueueMode, kitID string) int
}

type bucketKey struct {
	mode models.QueueMode
	kit  string
}

type queueService struct {
	kits      KitService
	parties   PartyService
	matches   MatchService
	duels     DuelLookup
	directory game.Directory
	notifier  game.Notifier
	log       *slog.Logger

	mu         sync.Mutex
	buckets    map[bucketKey][]*models.QueueEntry
	membership map[string]bucketKey
}

func NewQueueService(
	kits KitService,
	parties PartyService,
	matches MatchService,
	duels DuelLookup,
	directory game.Directory,
	notifier game.Notifier,
	log *slog.Logger,
) QueueService {
	return &queueService{
		kits:       kits,
		parties:    parties,
		matches:    matches,
		duels:      duels,
		directory:  directory,
		notifier:   notifier,
		log:        log,
		buckets:    make(map[bucketKey][]*models.QueueEntry),
		membership: make(map[string]bucketKey),
	}
}

func (s *queueService) Join(playerID string, mode models.QueueMode, kitID string) error {
	if !mode.Valid() {
		return ErrInvalidQueueMode
	}
	if _, err := s.kits.Get(kitID); err != nil {
		return err
	}
	if s.matches.InMatch(playerID) {
		return ErrPlayerInMatch
	}
	if s.duels != nil && s.duels.InDuel(playerID) {
		return ErrPlayerInMatch
	}
	if perTeam := mode.PlayersPerTeam(); perTeam > 1 {
		// Team modes are entered with a full party of exactly one side.
		p, ok := s.parties.Get(playerID)
		if !ok || p.Size() != perTeam {
			return ErrQueuePartySizeMismatch
		}
	}

	key := bucketKey{mode: mode, kit: kitID}
	s.mu.Lock()
	s.removeLocked(playerID)
	s.buckets[key] = append(s.buckets[key], &models.QueueEntry{
		PlayerID: playerID,
		Mode:     mode,
		KitID:    kitID,
		JoinedAt: time.Now(),
	})
	s.membership[playerID] = key

	required := mode.RequiredPlayers()
	if len(s.buckets[key]) < required {
		s.mu.Unlock()
		return nil
	}
	formed := s.buckets[key][:required]
	s.buckets[key] = append([]*models.QueueEntry(nil), s.buckets[key][required:]...)
	for _, e := range formed {
		delete(s.membership, e.PlayerID)
	}
	s.mu.Unlock()

	s.form(key, formed)
	return nil
}

// form tries to start a match from the popped entries. Offline entries are
// dropped silently and the online remainder goes back to the front of the
// bucket in its original order.
func (s *queueService) form(key bucketKey, formed []*models.QueueEntry) {
	online := formed[:0:0]
	for _, e := range formed {
		if s.directory.IsOnline(e.PlayerID) {
			online = append(online, e)
		}
	}
	if len(online) < len(formed) {
		s.requeueFront(key, online)
		return
	}

	players := make([]string, len(formed))
	for i, e := range formed {
		players[i] = e.PlayerID
	}
	if _, err := s.matches.StartQueueMatch(players, key.mode, key.kit); err != nil {
		s.requeueFront(key, formed)
		for _, p := range players {
			s.notifier.Message(p, "no arena available, you stay in the queue")
		}
		s.log.Warn("queue match start failed",
			slog.String("mode", string(key.mode)),
			slog.String("kit", key.kit),
			slog.Any("error", err))
	}
}

// requeueFront puts entries back at the head of the bucket, keeping their
// relative order, so nobody loses their place.
func (s *queueService) requeueFront(key bucketKey, entries []*models.QueueEntry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := entries[:0:0]
	for _, e := range entries {
		// Joined a different bucket while the formation was in flight.
		if _, moved := s.membership[e.PlayerID]; moved {
			continue
		}
		s.membership[e.PlayerID] = key
		kept = append(kept, e)
	}
	s.buckets[key] = append(kept, s.buckets[key]...)
}

func (s *queueService) Leave(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(playerID)
}

func (s *queueService) HandleDisconnect(playerID string) {
	s.Leave(playerID)
}

// removeLocked must be called with the lock held.
func (s *queueService) removeLocked(playerID string) {
	key, ok := s.membership[playerID]
	if !ok {
		return
	}
	delete(s.membership, playerID)
	bucket := s.buckets[key]
	for i, e := range bucket {
		if e.PlayerID == playerID {
			s.buckets[key] = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	if len(s.buckets[key]) == 0 {
		delete(s.buckets, key)
	}
}

func (s *queueService) Depth(mode models.QueueMode, kitID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets[bucketKey{mode: mode, kit: kitID}])
}
