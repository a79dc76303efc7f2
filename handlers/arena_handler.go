package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/services"
	"github.com/go-chi/chi/v5"
)

type ArenaHandler struct {
	arenaService services.ArenaService
}

func NewArenaHandler(arenaService services.ArenaService) *ArenaHandler {
	return &ArenaHandler{arenaService: arenaService}
}

func (h *ArenaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Name == "" {
		badRequestResponse(w, r, errors.New("arena name is required"))
		return
	}

	arena, err := h.arenaService.Create(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"arena": arenaView(arena)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArenaHandler) List(w http.ResponseWriter, r *http.Request) {
	arenas := h.arenaService.List()
	views := make([]jsonResponse, 0, len(arenas))
	for _, a := range arenas {
		views = append(views, arenaView(a))
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"arenas": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArenaHandler) Get(w http.ResponseWriter, r *http.Request) {
	arena, err := h.arenaService.Get(chi.URLParam(r, "name"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"arena": arenaView(arena)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArenaHandler) SetAnchor(w http.ResponseWriter, r *http.Request) {
	var input struct {
		World string  `json:"world"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Z     float64 `json:"z"`
		Yaw   float32 `json:"yaw"`
		Pitch float32 `json:"pitch"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pos := models.Position{
		World: input.World,
		X:     input.X, Y: input.Y, Z: input.Z,
		Yaw: input.Yaw, Pitch: input.Pitch,
	}

	name := chi.URLParam(r, "name")
	anchor := chi.URLParam(r, "anchor")
	if err := h.arenaService.SetAnchor(r.Context(), name, anchor, pos); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArenaHandler) SetRegenerate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Regenerate bool `json:"regenerate"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.arenaService.SetRegenerate(r.Context(), chi.URLParam(r, "name"), input.Regenerate); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArenaHandler) SetKits(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Kits []string `json:"kits"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.arenaService.SetKits(r.Context(), chi.URLParam(r, "name"), input.Kits); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArenaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.arenaService.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func arenaView(a *models.Arena) jsonResponse {
	return jsonResponse{
		"name":       a.Name,
		"complete":   a.Complete(),
		"in_use":     a.InUse,
		"regenerate": a.Regenerate,
		"kits":       a.Kits,
		"center":     a.Center,
		"spawn_a":    a.SpawnA,
		"spawn_b":    a.SpawnB,
		"corner_a":   a.CornerA,
		"corner_b":   a.CornerB,
	}
}
