package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/services"
)

// EventsHandler ingests game-server events. Deaths and disconnects fan out
// to every registry that may hold the player; each target treats unknown
// players as a no-op, so ordering does not matter.
type EventsHandler struct {
	matchService services.MatchService
	duelService  services.DuelService
	queueService services.QueueService
	partyService services.PartyService
}

func NewEventsHandler(
	matchService services.MatchService,
	duelService services.DuelService,
	queueService services.QueueService,
	partyService services.PartyService,
) *EventsHandler {
	return &EventsHandler{
		matchService: matchService,
		duelService:  duelService,
		queueService: queueService,
		partyService: partyService,
	}
}

func (h *EventsHandler) Death(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Victim string `json:"victim"`
		Killer string `json:"killer"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Victim == "" {
		badRequestResponse(w, r, errors.New("victim is required"))
		return
	}

	h.matchService.HandleDeath(input.Victim, input.Killer)
	h.duelService.HandleDeath(input.Victim, input.Killer)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventsHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Player == "" {
		badRequestResponse(w, r, errors.New("player is required"))
		return
	}

	h.queueService.HandleDisconnect(input.Player)
	h.matchService.HandleDisconnect(input.Player)
	h.duelService.HandleDisconnect(input.Player)
	h.partyService.HandleDisconnect(input.Player)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
