package models

import (
	"fmt"
	"time"
)

// QueueMode is a ranked-queue bracket.
type QueueMode string

const (
	Queue1v1 QueueMode = "1v1"
	Queue2v2 QueueMode = "2v2"
	Queue3v3 QueueMode = "3v3"
)

// PlayersPerTeam returns the team size for the mode, 0 for unknown modes.
func (q QueueMode) PlayersPerTeam() int {
	switch q {
	case Queue1v1:
		return 1
	case Queue2v2:
		return 2
	case Queue3v3:
		return 3
	}
	return 0
}

// RequiredPlayers is the bucket quota that triggers match formation.
func (q QueueMode) RequiredPlayers() int {
	return q.PlayersPerTeam() * 2
}

func (q QueueMode) Valid() bool {
	return q.PlayersPerTeam() > 0
}

// MatchMode returns the match mode tag for matches formed from this queue.
func (q QueueMode) MatchMode() MatchMode {
	return MatchMode(fmt.Sprintf("queue_%s", string(q)))
}

// QueueEntry is one participant waiting in a (mode, kit) bucket.
type QueueEntry struct {
	PlayerID string    `json:"player_id"`
	Mode     QueueMode `json:"mode"`
	KitID    string    `json:"kit_id"`
	JoinedAt time.Time `json:"joined_at"`
}
