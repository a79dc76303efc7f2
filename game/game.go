// Package game declares the narrow interfaces through which the match core
// talks to the game server proper. The core issues these as side-effecting
// commands (teleport, heal, grant kit) and consumes presence lookups; it
// never implements the world interactions itself.
package game

import "github.com/Dosada05/practice-system/models"

// Directory resolves an opaque participant identity to presence data.
type Directory interface {
	IsOnline(playerID string) bool
	DisplayName(playerID string) string
}

// World is the placement/state service on the game-server side.
type World interface {
	Teleport(playerID string, pos models.Position)
	// Reset restores health, hunger, and effects to defaults.
	Reset(playerID string)
	ClearInventory(playerID string)
	GiveKit(playerID string, kit *models.Kit)
	// SetFrozen suppresses movement and attacks during countdowns.
	SetFrozen(playerID string, frozen bool)
	SetSpectator(playerID string, spectating bool)
	// SendToLobby returns a player to the server's default location.
	SendToLobby(playerID string)
	SnapshotInventory(playerID string) models.InventorySnapshot
	RestoreInventory(playerID string, snap models.InventorySnapshot)
	// RegenerateArena restores the arena region between duel rounds.
	RegenerateArena(arena *models.Arena)
}

// Notifier delivers formatted text to participants and publishes match
// lifecycle events. Rendering and transport are out of scope for the core.
type Notifier interface {
	Message(playerID string, text string)
	Title(playerID string, title, subtitle string)
	// MatchEvent publishes a typed event for everyone following a match or
	// duel (countdown ticks, eliminations, results).
	MatchEvent(matchID string, event string, payload any)
}
