package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subscry/subscry/internal/models"
	"github.com/subscry/subscry/internal/recurrence"
	"github.com/subscry/subscry/internal/subscriptions"
)

type SubscriptionHandler struct {
	repo *subscriptions.Repository
}

func NewSubscriptionHandler(repo *subscriptions.Repository) *SubscriptionHandler {
	return &SubscriptionHandler{repo: repo}
}

// subscriptionResponse decorates a subscription with the calendar-day
// distance to its due date, which every list view needs.
type subscriptionResponse struct {
	models.Subscription
	DaysUntil int `json:"days_until"`
}

func toResponse(sub models.Subscription) subscriptionResponse {
	return subscriptionResponse{
		Subscription: sub,
		DaysUntil:    recurrence.DaysUntil(sub.NextDue, time.Now()),
	}
}

func toResponses(subs []models.Subscription) []subscriptionResponse {
	out := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		out[i] = toResponse(sub)
	}
	return out
}

type createSubscriptionRequest struct {
	Title              string                     `json:"title"`
	Amount             int64                      `json:"amount"`
	Participants       []models.InlineParticipant `json:"participants"`
	Frequency          models.Frequency           `json:"frequency"`
	CustomIntervalDays *int                       `json:"custom_interval_days"`
	StartDate          time.Time                  `json:"start_date"`
	EndDate            *time.Time                 `json:"end_date"`
	AutoRenew          bool                       `json:"auto_renew"`
	Tags               string                     `json:"tags"`
	Notes              *string                    `json:"notes"`
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be a positive number of cents")
		return
	}
	if !req.Frequency.Valid() {
		respondError(w, http.StatusBadRequest, "unsupported frequency")
		return
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now()
	}

	sub, err := h.repo.Create(subscriptions.CreateInput{
		Title:              req.Title,
		Amount:             req.Amount,
		Participants:       req.Participants,
		Frequency:          req.Frequency,
		CustomIntervalDays: req.CustomIntervalDays,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		AutoRenew:          req.AutoRenew,
		Tags:               req.Tags,
		Notes:              req.Notes,
	})
	if err != nil {
		respondSubscriptionError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toResponse(sub))
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter subscriptions.Filter
	filtered := false
	if raw := q.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "active must be a boolean")
			return
		}
		filter.Active = &active
		filtered = true
	}
	if raw := q.Get("tags"); raw != "" {
		filter.Tags = strings.Split(raw, ",")
		filtered = true
	}

	if filtered {
		respondJSON(w, http.StatusOK, toResponses(h.repo.Search(filter)))
		return
	}
	respondJSON(w, http.StatusOK, toResponses(h.repo.List()))
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondSubscriptionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toResponse(sub))
}

type updateSubscriptionRequest struct {
	Title              *string                    `json:"title"`
	Amount             *int64                     `json:"amount"`
	Participants       []models.InlineParticipant `json:"participants"`
	Frequency          *models.Frequency          `json:"frequency"`
	CustomIntervalDays *int                       `json:"custom_interval_days"`
	StartDate          *time.Time                 `json:"start_date"`
	EndDate            *time.Time                 `json:"end_date"`
	AutoRenew          *bool                      `json:"auto_renew"`
	Tags               *string                    `json:"tags"`
	Notes              *string                    `json:"notes"`
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Frequency != nil && !req.Frequency.Valid() {
		respondError(w, http.StatusBadRequest, "unsupported frequency")
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be a positive number of cents")
		return
	}

	sub, err := h.repo.Update(chi.URLParam(r, "id"), subscriptions.Patch{
		Title:              req.Title,
		Amount:             req.Amount,
		Participants:       req.Participants,
		Frequency:          req.Frequency,
		CustomIntervalDays: req.CustomIntervalDays,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		AutoRenew:          req.AutoRenew,
		Tags:               req.Tags,
		Notes:              req.Notes,
	})
	if err != nil {
		respondSubscriptionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toResponse(sub))
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.repo.Delete(chi.URLParam(r, "id")) {
		respondError(w, http.StatusNotFound, "subscription not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionHandler) MarkAsPaid(w http.ResponseWriter, r *http.Request) {
	sub, err := h.repo.MarkAsPaid(chi.URLParam(r, "id"))
	if err != nil {
		respondSubscriptionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toResponse(sub))
}

func respondSubscriptionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, subscriptions.ErrNotFound):
		respondError(w, http.StatusNotFound, "subscription not found")
	case errors.Is(err, recurrence.ErrUnsupportedFrequency):
		respondError(w, http.StatusBadRequest, "unsupported frequency")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
