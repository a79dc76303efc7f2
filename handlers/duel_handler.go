package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/services"
	"github.com/go-chi/chi/v5"
)

type DuelHandler struct {
	duelService services.DuelService
}

func NewDuelHandler(duelService services.DuelService) *DuelHandler {
	return &DuelHandler{duelService: duelService}
}

func (h *DuelHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Challenger  string `json:"challenger"`
		Target      string `json:"target"`
		Kit         string `json:"kit"`
		RoundsToWin int    `json:"rounds_to_win"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Challenger == "" || input.Target == "" || input.Kit == "" {
		badRequestResponse(w, r, errors.New("challenger, target, and kit are required"))
		return
	}

	d, err := h.duelService.Challenge(input.Challenger, input.Target, input.Kit, input.RoundsToWin)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{
		"duel":  duelView(d),
		"token": d.Token,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DuelHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
		Token  string `json:"token"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Player == "" || input.Token == "" {
		badRequestResponse(w, r, errors.New("player and token are required"))
		return
	}

	d, err := h.duelService.Accept(input.Player, input.Token)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"duel": duelView(d)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DuelHandler) Decline(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
		Token  string `json:"token"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.duelService.Decline(input.Player, input.Token); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "declined"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DuelHandler) List(w http.ResponseWriter, r *http.Request) {
	duels := h.duelService.List()
	views := make([]jsonResponse, 0, len(duels))
	for _, d := range duels {
		views = append(views, duelView(d))
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"duels": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DuelHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.duelService.Get(chi.URLParam(r, "id"))
	if !ok {
		notFoundResponse(w, r)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"duel": duelView(d)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func duelView(d *models.Duel) jsonResponse {
	view := jsonResponse{
		"id":            d.ID,
		"state":         d.State(),
		"challenger":    d.Challenger,
		"target":        d.Target,
		"kit":           d.KitID,
		"rounds_to_win": d.RoundsToWin,
		"round":         d.Round(),
		"score": map[string]int{
			d.Challenger: d.Wins(d.Challenger),
			d.Target:     d.Wins(d.Target),
		},
	}
	if arena := d.Arena(); arena != nil {
		view["arena"] = arena.Name
	}
	return view
}
