package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/practice-system/game"
	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/scheduler"
)

const (
	partyInviteTTL         = 60 * time.Second
	partyInviteSweepPeriod = 30 * time.Second
)

// PartyService owns every party and the player -> party reverse lookup.
// All membership mutation funnels through here so the leader-is-member
// invariant holds.
type PartyService interface {
	Create(leader string) (*models.Party, error)
	Get(player string) (*models.Party, bool)
	Invite(leader, invitee string) error
	Accept(invitee, leader string) error
	Leave(player string) error
	Kick(leader, member string) error
	Disband(leader string) error
	// SetInMatch flags the party as busy. Match services call this when a
	// match starts and after post-match cleanup.
	SetInMatch(p *models.Party, inMatch bool)
	InMatch(p *models.Party) bool
	HandleDisconnect(player string)
	Shutdown()
}

type partyService struct {
	directory game.Directory
	notifier  game.Notifier
	log       *slog.Logger

	mu       sync.Mutex
	byPlayer map[string]*models.Party
	byLeader map[string]*models.Party

	sweep scheduler.Handle
	now   func() time.Time
}

func NewPartyService(directory game.Directory, notifier game.Notifier, sched scheduler.Scheduler, log *slog.Logger) PartyService {
	s := &partyService{
		directory: directory,
		notifier:  notifier,
		log:       log,
		byPlayer:  make(map[string]*models.Party),
		byLeader:  make(map[string]*models.Party),
		now:       time.Now,
	}
	s.sweep = sched.Every(partyInviteSweepPeriod, s.sweepInvites)
	return s
}

func (s *partyService) Create(leader string) (*models.Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPlayer[leader]; ok {
		return nil, ErrAlreadyInParty
	}
	p := models.NewParty(leader)
	s.byPlayer[leader] = p
	s.byLeader[leader] = p
	return p, nil
}

func (s *partyService) Get(player string) (*models.Party, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byPlayer[player]
	return p, ok
}

func (s *partyService) Invite(leader, invitee string) error {
	s.mu.Lock()
	p, ok := s.byLeader[leader]
	if !ok {
		s.mu.Unlock()
		return ErrNotPartyLeader
	}
	if _, inParty := s.byPlayer[invitee]; inParty {
		s.mu.Unlock()
		return ErrAlreadyInParty
	}
	if !s.directory.IsOnline(invitee) {
		s.mu.Unlock()
		return ErrTargetOffline
	}
	p.SetInvite(invitee, s.now().Add(partyInviteTTL))
	s.mu.Unlock()

	s.notifier.Message(invitee, leader+" invited you to their party")
	return nil
}

func (s *partyService) Accept(invitee, leader string) error {
	s.mu.Lock()
	p, ok := s.byLeader[leader]
	if !ok {
		s.mu.Unlock()
		return ErrPartyNotFound
	}
	if _, inParty := s.byPlayer[invitee]; inParty {
		s.mu.Unlock()
		return ErrAlreadyInParty
	}
	if !p.HasInvite(invitee, s.now()) {
		p.ClearInvite(invitee)
		s.mu.Unlock()
		return ErrInviteNotFound
	}
	p.ClearInvite(invitee)
	p.AddMember(invitee)
	s.byPlayer[invitee] = p
	members := p.Members()
	s.mu.Unlock()

	for _, m := range members {
		s.notifier.Message(m, invitee+" joined the party")
	}
	return nil
}

func (s *partyService) Leave(player string) error {
	s.mu.Lock()
	p, ok := s.byPlayer[player]
	if !ok {
		s.mu.Unlock()
		return ErrPartyNotFound
	}
	if p.Leader == player {
		// The leader is always a member unless the party is disbanded, so a
		// leaving leader takes the party down with them.
		s.disbandLocked(p)
		s.mu.Unlock()
		return nil
	}
	p.RemoveMember(player)
	delete(s.byPlayer, player)
	members := p.Members()
	s.mu.Unlock()

	for _, m := range members {
		s.notifier.Message(m, player+" left the party")
	}
	return nil
}

func (s *partyService) Kick(leader, member string) error {
	s.mu.Lock()
	p, ok := s.byLeader[leader]
	if !ok {
		s.mu.Unlock()
		return ErrNotPartyLeader
	}
	if member == leader || !p.IsMember(member) {
		s.mu.Unlock()
		return ErrNotPartyMember
	}
	p.RemoveMember(member)
	delete(s.byPlayer, member)
	s.mu.Unlock()

	s.notifier.Message(member, "you were removed from the party")
	return nil
}

func (s *partyService) Disband(leader string) error {
	s.mu.Lock()
	p, ok := s.byLeader[leader]
	if !ok {
		s.mu.Unlock()
		return ErrNotPartyLeader
	}
	members := s.disbandLocked(p)
	s.mu.Unlock()

	for _, m := range members {
		s.notifier.Message(m, "the party was disbanded")
	}
	return nil
}

// disbandLocked must be called with the lock held. Returns the members that
// were in the party.
func (s *partyService) disbandLocked(p *models.Party) []string {
	members := p.Members()
	for _, m := range members {
		delete(s.byPlayer, m)
	}
	delete(s.byLeader, p.Leader)
	return members
}

func (s *partyService) SetInMatch(p *models.Party, inMatch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.InMatch = inMatch
}

func (s *partyService) InMatch(p *models.Party) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return p.InMatch
}

func (s *partyService) HandleDisconnect(player string) {
	s.mu.Lock()
	p, ok := s.byPlayer[player]
	if !ok {
		s.mu.Unlock()
		return
	}
	// Members of a party that is mid-match stay on the roster; the match
	// service handles the forced elimination and the party survives until
	// post-match cleanup.
	if p.InMatch {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	_ = s.Leave(player)
}

func (s *partyService) sweepInvites() {
	s.mu.Lock()
	now := s.now()
	expired := make(map[string]string) // invitee -> leader
	for leader, p := range s.byLeader {
		for _, invitee := range p.PruneInvites(now) {
			expired[invitee] = leader
		}
	}
	s.mu.Unlock()

	for invitee, leader := range expired {
		s.notifier.Message(invitee, "party invite from "+leader+" expired")
	}
}

func (s *partyService) Shutdown() {
	s.sweep.Cancel()
}
