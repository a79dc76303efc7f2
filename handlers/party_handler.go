package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/services"
	"github.com/go-chi/chi/v5"
)

type PartyHandler struct {
	partyService services.PartyService
}

func NewPartyHandler(partyService services.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	party, err := h.partyService.Create(input.Player)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"party": partyView(party, h.partyService)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	party, ok := h.partyService.Get(chi.URLParam(r, "player"))
	if !ok {
		notFoundResponse(w, r)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"party": partyView(party, h.partyService)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Leader  string `json:"leader"`
		Invitee string `json:"invitee"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Leader == "" || input.Invitee == "" {
		badRequestResponse(w, r, errors.New("leader and invitee are required"))
		return
	}

	if err := h.partyService.Invite(input.Leader, input.Invitee); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "invited"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartyHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
		Leader string `json:"leader"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Player == "" || input.Leader == "" {
		badRequestResponse(w, r, errors.New("player and leader are required"))
		return
	}

	if err := h.partyService.Accept(input.Player, input.Leader); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "joined"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.partyService.Leave(input.Player); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "left"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartyHandler) Kick(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Leader string `json:"leader"`
		Member string `json:"member"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.partyService.Kick(input.Leader, input.Member); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "kicked"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PartyHandler) Disband(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Leader string `json:"leader"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.partyService.Disband(input.Leader); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "disbanded"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func partyView(p *models.Party, svc services.PartyService) jsonResponse {
	return jsonResponse{
		"leader":   p.Leader,
		"members":  p.Members(),
		"in_match": svc.InMatch(p),
	}
}
