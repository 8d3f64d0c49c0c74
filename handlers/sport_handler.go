package handlers

import (
	"net/http"

	"github.com/MaturityMaxing/sportns/services"
)

type SportHandler struct {
	sportService *services.SportService
}

func NewSportHandler(sportService *services.SportService) *SportHandler {
	return &SportHandler{sportService: sportService}
}

// ListHandler handles GET /sports
func (h *SportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	sports, err := h.sportService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sports": sports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler handles POST /sports
func (h *SportHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sport, err := h.sportService.Create(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"sport": sport}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadIconHandler handles PUT /sports/{sportID}/icon with a raw image body.
func (h *SportHandler) UploadIconHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "sportID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	sport, err := h.sportService.UploadIcon(r.Context(), id, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sport": sport}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
