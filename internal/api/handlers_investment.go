/**
 * @description
 * Investment endpoints: subscribing to a plan, the dashboard, the subscription
 * detail view, one-off contributions and pause/resume.
 */
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

// handleSubscribe enrolls the caller in a plan.
func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var req domain.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.investments.Subscribe(r.Context(), profileID, planID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sub)
}

// handleDashboard aggregates the caller's live subscriptions.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	summary, err := h.investments.GetDashboard(r.Context(), profileID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// handleGetSubscription returns one subscription with its plan and history.
func (h *Handler) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	subscriptionID, err := uuid.Parse(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	detail, err := h.investments.GetSubscriptionDetail(r.Context(), profileID, subscriptionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

// handleContribute records a one-off contribution on an active subscription.
func (h *Handler) handleContribute(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	subscriptionID, err := uuid.Parse(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	var req domain.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.investments.Contribute(r.Context(), profileID, subscriptionID, req.Amount)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// handlePause moves an active subscription to paused.
func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.investments.Pause)
}

// handleResume moves a paused subscription back to active.
func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.investments.Resume)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, profileID, subscriptionID uuid.UUID) (*domain.Subscription, error)) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	subscriptionID, err := uuid.Parse(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}

	sub, err := fn(r.Context(), profileID, subscriptionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}
