package models

import "time"

// Party is a leader plus member set that jointly enters matches. The leader
// is always a member until the party is disbanded.
type Party struct {
	Leader  string
	members map[string]struct{}
	invites map[string]time.Time // invitee -> expiry
	InMatch bool
}

// NewParty creates a party with the leader as its only member.
func NewParty(leader string) *Party {
	p := &Party{
		Leader:  leader,
		members: make(map[string]struct{}),
		invites: make(map[string]time.Time),
	}
	p.members[leader] = struct{}{}
	return p
}

// NewPartyOf creates an ephemeral party from a fixed member list. The first
// member becomes the leader. Used for queue matches and combined duel groups.
func NewPartyOf(members []string) *Party {
	if len(members) == 0 {
		return nil
	}
	p := NewParty(members[0])
	for _, m := range members[1:] {
		p.members[m] = struct{}{}
	}
	return p
}

// Members returns a copy of the member set, leader included.
func (p *Party) Members() []string {
	out := make([]string, 0, len(p.members))
	for m := range p.members {
		out = append(out, m)
	}
	return out
}

func (p *Party) Size() int { return len(p.members) }

func (p *Party) IsMember(id string) bool {
	_, ok := p.members[id]
	return ok
}

func (p *Party) AddMember(id string) {
	p.members[id] = struct{}{}
}

func (p *Party) RemoveMember(id string) {
	delete(p.members, id)
}

// SetInvite records a pending invitation with the given expiry.
func (p *Party) SetInvite(id string, expiresAt time.Time) {
	p.invites[id] = expiresAt
}

func (p *Party) ClearInvite(id string) {
	delete(p.invites, id)
}

// HasInvite reports whether id holds an invitation that has not expired at
// the given instant.
func (p *Party) HasInvite(id string, now time.Time) bool {
	exp, ok := p.invites[id]
	return ok && now.Before(exp)
}

// PruneInvites drops every invitation whose expiry is at or before now and
// returns the invitees that were dropped.
func (p *Party) PruneInvites(now time.Time) []string {
	var dropped []string
	for id, exp := range p.invites {
		if !now.Before(exp) {
			delete(p.invites, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}
