package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/models"
	"github.com/Dosada05/practice-system/services"
)

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

func (h *QueueHandler) Join(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
		Mode   string `json:"mode"`
		Kit    string `json:"kit"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Player == "" || input.Mode == "" || input.Kit == "" {
		badRequestResponse(w, r, errors.New("player, mode, and kit are required"))
		return
	}

	if err := h.queueService.Join(input.Player, models.QueueMode(input.Mode), input.Kit); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "queued"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *QueueHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Player string `json:"player"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.queueService.Leave(input.Player)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "left"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *QueueHandler) Depth(w http.ResponseWriter, r *http.Request) {
	mode := models.QueueMode(r.URL.Query().Get("mode"))
	kit := r.URL.Query().Get("kit")
	if !mode.Valid() || kit == "" {
		badRequestResponse(w, r, errors.New("valid mode and kit query parameters are required"))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{
		"mode":  mode,
		"kit":   kit,
		"depth": h.queueService.Depth(mode, kit),
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
