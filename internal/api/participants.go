package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/subscry/subscry/internal/participants"
)

type ParticipantHandler struct {
	dir *participants.Directory
}

func NewParticipantHandler(dir *participants.Directory) *ParticipantHandler {
	return &ParticipantHandler{dir: dir}
}

func (h *ParticipantHandler) List(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.dir.List())
}

// Create is find-or-create: posting an existing name returns the
// existing record instead of a duplicate.
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.dir.FindOrCreate(req.Name)
	if err != nil {
		respondParticipantError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name *string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.dir.Update(chi.URLParam(r, "id"), participants.Patch{Name: req.Name})
	if err != nil {
		respondParticipantError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.dir.Delete(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "participant not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) SetAsMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.dir.SetAsMe(chi.URLParam(r, "id"))
	if err != nil {
		respondParticipantError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ParticipantHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	h.dir.AddSubscriptionLink(chi.URLParam(r, "id"), chi.URLParam(r, "subscriptionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ParticipantHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	h.dir.RemoveSubscriptionLink(chi.URLParam(r, "id"), chi.URLParam(r, "subscriptionID"))
	w.WriteHeader(http.StatusNoContent)
}

func respondParticipantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, participants.ErrNotFound):
		respondError(w, http.StatusNotFound, "participant not found")
	case errors.Is(err, participants.ErrEmptyName):
		respondError(w, http.StatusBadRequest, "name is required")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
