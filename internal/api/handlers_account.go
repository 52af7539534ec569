/**
 * @description
 * Wallet and KYC endpoints for the signed-in user: balance, ledger, deposits
 * and document uploads.
 */
package api

import (
	"encoding/json"
	"net/http"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

// handleGetWallet returns the caller's wallet.
func (h *Handler) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	wallet, err := h.accounts.GetWallet(r.Context(), profileID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, wallet)
}

// handleListTransactions returns the caller's visible ledger entries.
func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	txns, err := h.accounts.ListTransactions(r.Context(), profileID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, txns)
}

// handleDeposit opens a pending wallet deposit.
func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := h.accounts.Deposit(r.Context(), profileID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, txn)
}

// handleUploadDocument records KYC document metadata for review.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.UploadDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.accounts.UploadDocument(r.Context(), profileID, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doc)
}

// handleListDocuments returns the caller's KYC uploads.
func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	docs, err := h.accounts.ListDocuments(r.Context(), profileID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, docs)
}
