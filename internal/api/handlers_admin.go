/**
 * @description
 * Admin endpoints: plan and grant management, asset price updates, deposit
 * confirmation and KYC review. All routes here sit behind the admin gate.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

// handleCreatePlan adds a plan to the catalog.
func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var plan domain.InvestmentPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.plans.CreatePlan(r.Context(), &plan)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// handleUpdatePlan overwrites an existing plan's editable fields.
func (h *Handler) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var plan domain.InvestmentPlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	plan.ID = planID

	updated, err := h.plans.UpdatePlan(r.Context(), &plan)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// handleCreateGrant attaches a promotion grant to a plan.
func (h *Handler) handleCreateGrant(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var grant domain.PromotionGrant
	if err := json.NewDecoder(r.Body).Decode(&grant); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	grant.PlanID = planID
	grant.IsActive = true

	created, err := h.plans.AddGrant(r.Context(), &grant)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// handleCreateAsset attaches a portfolio holding to a plan.
func (h *Handler) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid plan id")
		return
	}

	var asset domain.PlanPortfolioAsset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	asset.PlanID = planID
	asset.IsActive = true

	created, err := h.plans.AddAsset(r.Context(), &asset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

type priceUpdateRequest struct {
	Price int64 `json:"price"` // in cents
}

// handleUpdateAssetPrice stamps a new market price on a holding.
func (h *Handler) handleUpdateAssetPrice(w http.ResponseWriter, r *http.Request) {
	assetID, err := uuid.Parse(chi.URLParam(r, "assetID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req priceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.plans.UpdateAssetPrice(r.Context(), assetID, req.Price)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

// handleConfirmDeposit settles a pending deposit by its ledger reference.
func (h *Handler) handleConfirmDeposit(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		respondWithError(w, http.StatusBadRequest, "reference is required")
		return
	}

	txn, bonus, err := h.accounts.ConfirmDeposit(r.Context(), reference)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Transaction  domain.WalletTransaction `json:"transaction"`
		WelcomeBonus int64                    `json:"welcome_bonus"`
	}{Transaction: *txn, WelcomeBonus: bonus})
}

// handleReviewDocument applies an admin decision to a KYC document.
func (h *Handler) handleReviewDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var req domain.ReviewDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, level, err := h.accounts.ReviewDocument(r.Context(), documentID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, struct {
		Document          domain.KYCDocument `json:"document"`
		VerificationLevel int                `json:"verification_level"`
	}{Document: *doc, VerificationLevel: level})
}
