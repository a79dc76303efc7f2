package services

import "errors"

// Shared errors used across services and in HTTP status mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules. These are resolved at the boundary:
	// a rejected call leaves all registries untouched.
	ErrInvalidRounds          = errors.New("rounds to win must be between 1 and 10")
	ErrInvalidQueueMode       = errors.New("unknown queue mode")
	ErrSelfChallenge          = errors.New("cannot challenge yourself")
	ErrPartyTooSmall          = errors.New("party needs at least two members")
	ErrQueuePartySizeMismatch = errors.New("party size does not match the queue team size")
	ErrInvalidAnchor          = errors.New("unknown arena anchor")

	// Contention and state conflicts.
	ErrNoArenaAvailable       = errors.New("no arena available")
	ErrArenaReserved          = errors.New("arena is reserved by a running match")
	ErrPartyInMatch           = errors.New("party is already in a match")
	ErrPlayerInMatch          = errors.New("player is already in a match")
	ErrPendingChallengeExists = errors.New("player already has a pending duel request")
	ErrNoPendingChallenge     = errors.New("no pending duel request")
	ErrNotChallengeTarget     = errors.New("only the challenged player can respond to this request")
	ErrTargetOffline          = errors.New("target player is not online")

	// Party membership.
	ErrPartyNotFound  = errors.New("party not found")
	ErrNotPartyLeader = errors.New("only the party leader can perform this action")
	ErrAlreadyInParty = errors.New("player is already in a party")
	ErrNotPartyMember = errors.New("player is not a member of this party")
	ErrInviteNotFound = errors.New("no pending party invite")

	// Entity lookups. Repository errors are translated to these so handlers
	// only ever see service-level sentinels.
	ErrArenaNotFound     = errors.New("arena not found")
	ErrArenaNameConflict = errors.New("arena name is already in use")
	ErrKitNotFound       = errors.New("kit not found")
	ErrKitNameConflict   = errors.New("kit id is already in use")

	// Auth.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
