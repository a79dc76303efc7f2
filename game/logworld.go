package game

import (
	"log/slog"

	"github.com/Dosada05/practice-system/models"
)

// LogWorld is a World that records every command to the log instead of
// touching a real game server. It is the stand-in wired in cmd/main until a
// server bridge registers the real implementation.
type LogWorld struct {
	log *slog.Logger
}

func NewLogWorld(log *slog.Logger) *LogWorld {
	return &LogWorld{log: log}
}

func (w *LogWorld) Teleport(playerID string, pos models.Position) {
	w.log.Debug("world: teleport", slog.String("player", playerID),
		slog.String("world", pos.World), slog.Float64("x", pos.X), slog.Float64("y", pos.Y), slog.Float64("z", pos.Z))
}

func (w *LogWorld) Reset(playerID string) {
	w.log.Debug("world: reset", slog.String("player", playerID))
}

func (w *LogWorld) ClearInventory(playerID string) {
	w.log.Debug("world: clear inventory", slog.String("player", playerID))
}

func (w *LogWorld) GiveKit(playerID string, kit *models.Kit) {
	w.log.Debug("world: give kit", slog.String("player", playerID), slog.String("kit", kit.ID))
}

func (w *LogWorld) SetFrozen(playerID string, frozen bool) {
	w.log.Debug("world: set frozen", slog.String("player", playerID), slog.Bool("frozen", frozen))
}

func (w *LogWorld) SetSpectator(playerID string, spectating bool) {
	w.log.Debug("world: set spectator", slog.String("player", playerID), slog.Bool("spectating", spectating))
}

func (w *LogWorld) SendToLobby(playerID string) {
	w.log.Debug("world: send to lobby", slog.String("player", playerID))
}

func (w *LogWorld) SnapshotInventory(playerID string) models.InventorySnapshot {
	w.log.Debug("world: snapshot inventory", slog.String("player", playerID))
	return nil
}

func (w *LogWorld) RestoreInventory(playerID string, snap models.InventorySnapshot) {
	w.log.Debug("world: restore inventory", slog.String("player", playerID), slog.Int("bytes", len(snap)))
}

func (w *LogWorld) RegenerateArena(arena *models.Arena) {
	w.log.Debug("world: regenerate arena", slog.String("arena", arena.Name))
}
