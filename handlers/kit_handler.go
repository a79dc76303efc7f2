package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/practice-system/services"
	"github.com/go-chi/chi/v5"
)

const maxIconSize = 2 << 20 // 2MB

type KitHandler struct {
	kitService services.KitService
}

func NewKitHandler(kitService services.KitService) *KitHandler {
	return &KitHandler{kitService: kitService}
}

func (h *KitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ID == "" {
		badRequestResponse(w, r, errors.New("kit id is required"))
		return
	}

	kit, err := h.kitService.Create(r.Context(), input.ID, input.DisplayName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"kit": kit}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *KitHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"kits": h.kitService.List()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *KitHandler) Get(w http.ResponseWriter, r *http.Request) {
	kit, err := h.kitService.Get(chi.URLParam(r, "id"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"kit": kit}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadIcon accepts a multipart form with a single "icon" file field.
func (h *KitHandler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxIconSize); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}
	file, header, err := r.FormFile("icon")
	if err != nil {
		badRequestResponse(w, r, errors.New("icon file field is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	kit, err := h.kitService.UploadIcon(r.Context(), chi.URLParam(r, "id"), contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"kit": kit}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *KitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.kitService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
