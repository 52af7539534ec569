/**
 * @description
 * Public plan catalog endpoints: listing with filters and the plan detail view.
 */
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

// handleListPlans returns the active catalog filtered by query parameters.
func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	filter := domain.PlanFilter{
		Category:  r.URL.Query().Get("category"),
		RiskLevel: r.URL.Query().Get("risk_level"),
		Search:    r.URL.Query().Get("search"),
	}

	plans, err := h.plans.ListPlans(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, plans)
}

// handleGetPlan returns one plan with its holdings and running promotions.
// When the caller is signed in, the response flags an existing subscription.
func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var profileID *uuid.UUID
	if id, ok := profileIDFromContext(r.Context()); ok {
		profileID = &id
	}

	detail, err := h.plans.GetPlanDetail(r.Context(), planID, profileID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}
