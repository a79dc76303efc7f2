package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) StartFFA(w http.ResponseWriter, r *http.Request) {
	h.startPartyMatch(w, r, h.matchService.StartFFA)
}

func (h *MatchHandler) StartSplit(w http.ResponseWriter, r *http.Request) {
	h.startPartyMatch(w, r, h.matchService.StartSplit)
}

func (h *MatchHandler) startPartyMatch(w http.ResponseWriter, r *http.Request, start func(leader, kitID string) (*models.Match, error)) {
	var input struct {
		Leader string `json:"leader"`
		Kit    string `json:"kit"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Leader == "" || input.Kit == "" {
		badRequestResponse(w, r, errors.New("leader and kit are required"))
		return
	}

	m, err := start(input.Leader, input.Kit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": matchView(m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) StartPartyVersus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		LeaderA string `json:"leader_a"`
		LeaderB string `json:"leader_b"`
		Kit     string `json:"kit"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.LeaderA == "" || input.LeaderB == "" || input.Kit == "" {
		badRequestResponse(w, r, errors.New("leader_a, leader_b, and kit are required"))
		return
	}

	m, err := h.matchService.StartPartyVersus(input.LeaderA, input.LeaderB, input.Kit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": matchView(m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	matches := h.matchService.List()
	views := make([]jsonResponse, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView(m))
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.matchService.Get(chi.URLParam(r, "id"))
	if !ok {
		notFoundResponse(w, r)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": matchView(m)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func matchView(m *models.Match) jsonResponse {
	participants := m.Participants()
	teams := make(map[string]int, len(participants))
	for _, p := range participants {
		teams[p] = m.Team(p)
	}
	return jsonResponse{
		"id":           m.ID,
		"mode":         m.Mode,
		"state":        m.State(),
		"arena":        m.Arena.Name,
		"kit":          m.Kit.ID,
		"participants": participants,
		"teams":        teams,
		"alive":        m.Alive(),
		"eliminated":   m.Eliminated(),
	}
}
