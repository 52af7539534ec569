/**
 * @description
 * This file defines the shared Handler type and the authentication endpoints.
 * The remaining handlers are split by area across the handlers_*.go files.
 */
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/app"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

// Handler holds the services the HTTP endpoints delegate to.
type Handler struct {
	plans       *app.PlanService
	investments *app.InvestmentService
	accounts    *app.AccountService
	logger      *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(plans *app.PlanService, investments *app.InvestmentService, accounts *app.AccountService, logger *slog.Logger) *Handler {
	return &Handler{plans: plans, investments: investments, accounts: accounts, logger: logger}
}

type authResponse struct {
	Token   string         `json:"token"`
	Account domain.Account `json:"account"`
}

// handleRegister creates a new account and returns it with a token.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, token, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, authResponse{Token: token, Account: *account})
}

// handleLogin authenticates by email and password.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, token, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, authResponse{Token: token, Account: *account})
}

// handleMe returns the caller's user, profile and wallet.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, account)
}
