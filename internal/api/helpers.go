/**
 * @description
 * JSON response helpers and the mapping from service errors to HTTP statuses.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/app"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// respondWithServiceError translates app and store errors into the API's
// error taxonomy: validation 400, missing or wrongly-stated resources 404,
// duplicates 409, everything unexpected 500.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var validation *app.ValidationError
	if errors.As(err, &validation) {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Message, Field: validation.Field})
		return
	}

	var duplicate *app.DuplicateSubscriptionError
	if errors.As(err, &duplicate) {
		respondWithJSON(w, http.StatusConflict, struct {
			Error                  string `json:"error"`
			ExistingSubscriptionID string `json:"existing_subscription_id"`
		}{
			Error:                  "a live subscription to this plan already exists",
			ExistingSubscriptionID: duplicate.ExistingID.String(),
		})
		return
	}

	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrInsufficientFunds):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicateUser),
		errors.Is(err, store.ErrDuplicatePlanName):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrPlanNotFound),
		errors.Is(err, store.ErrAssetNotFound),
		errors.Is(err, store.ErrGrantNotFound),
		errors.Is(err, store.ErrSubscriptionNotFound),
		errors.Is(err, store.ErrScheduleNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProfileNotFound),
		errors.Is(err, store.ErrWalletNotFound),
		errors.Is(err, store.ErrDocumentNotFound),
		errors.Is(err, store.ErrTransactionNotFound),
		errors.Is(err, store.ErrInvalidStatus):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
