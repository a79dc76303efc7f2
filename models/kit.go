package models

import "time"

// Kit is a named loadout grantable to a participant at match start. The
// actual item contents live on the game-server side; the core only tracks
// identity and display data.
type Kit struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	IconKey     string    `json:"icon_key,omitempty"`
	IconURL     string    `json:"icon_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// InventorySnapshot is an opaque capture of a participant's inventory,
// carried between duel rounds for restore. The core never inspects it.
type InventorySnapshot []byte
