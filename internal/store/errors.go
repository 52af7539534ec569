package store

import "errors"

// Sentinel errors returned by the repositories. The app layer matches on these
// with errors.Is and translates them into API responses.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrAssetNotFound        = errors.New("portfolio asset not found")
	ErrGrantNotFound        = errors.New("promotion grant not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrScheduleNotFound     = errors.New("contribution schedule not found")
	ErrDocumentNotFound     = errors.New("kyc document not found")
	ErrTransactionNotFound  = errors.New("wallet transaction not found")

	ErrDuplicateSubscription = errors.New("live subscription already exists for this plan")
	ErrDuplicateUser         = errors.New("email or username already taken")
	ErrDuplicatePlanName     = errors.New("plan name already taken")
	ErrInsufficientFunds     = errors.New("insufficient wallet balance")
	ErrInvalidStatus         = errors.New("resource is not in the required status")
)
