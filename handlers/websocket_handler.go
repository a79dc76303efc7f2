package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/practice-system/live"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict Origin once the frontend domain is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
	log *slog.Logger
}

func NewWebSocketHandler(hub *live.Hub, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, log: log}
}

// ServeMatch subscribes the connection to one match's event room.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")
	if matchID == "" {
		http.Error(w, "missing match id", http.StatusBadRequest)
		return
	}
	h.serve(w, r, live.MatchRoom(matchID), "")
}

// ServePlayer subscribes the connection to a player's personal room. Open
// personal connections also drive the presence directory.
func (h *WebSocketHandler) ServePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "id")
	if playerID == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}
	h.serve(w, r, live.PlayerRoom(playerID), playerID)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug("websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Room:     room,
		PlayerID: playerID,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
