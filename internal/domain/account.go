/**
 * @description
 * This file defines the account-side domain models: users, their investor
 * profiles, the wallet ledger and KYC documents with the verification tiering
 * derived from them.
 *
 * @notes
 * - A user, their profile and their wallet are provisioned together in one
 *   transaction at registration. There is no implicit cascade-on-save.
 */

package domain

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account holder.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile carries the investor-facing attributes of a user.
type Profile struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Country     string     `json:"country,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	ReferredBy  *uuid.UUID `json:"referred_by,omitempty"`
	ReferClicks int        `json:"refer_clicks"`

	// VerificationLevel is derived from approved KYC documents:
	// 0 none, 1 identity, 2 financial records, 3 loan agreement.
	VerificationLevel int `json:"verification_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Wallet is the user-facing balance ledger, separate from the plan/subscription flow.
type Wallet struct {
	ID             uuid.UUID `json:"id"`
	ProfileID      uuid.UUID `json:"profile_id"`
	Balance        int64     `json:"balance"`         // in cents
	AmountInvested int64     `json:"amount_invested"` // in cents
	BTCAddress     *string   `json:"btc_address,omitempty"`
	PINHash        *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Wallet transaction directions.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Wallet transaction statuses, carried over from the legacy ledger.
const (
	TxnStatusPending    = "pending"
	TxnStatusProcessing = "processing"
	TxnStatusConfirming = "confirming"
	TxnStatusCredit     = "credit" // settled
	TxnStatusError      = "error"
	TxnStatusFailed     = "failed"
	TxnStatusHidden     = "hidden" // excluded from user-facing listings
)

// WalletTransaction is one movement on a wallet.
type WalletTransaction struct {
	ID        uuid.UUID `json:"id"`
	WalletID  uuid.UUID `json:"wallet_id"`
	Amount    int64     `json:"amount"` // in cents
	Direction string    `json:"direction"`
	Status    string    `json:"status"`
	Reference string    `json:"reference"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KYC document types, in ascending verification weight.
const (
	DocumentTypeID        = "id"
	DocumentTypeFinancial = "financial"
	DocumentTypeLoan      = "loan"
	DocumentTypeOther     = "other"
)

// DocumentTypes lists every valid KYC document type.
var DocumentTypes = []string{DocumentTypeID, DocumentTypeFinancial, DocumentTypeLoan, DocumentTypeOther}

// KYC document review statuses.
const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

// KYCDocument records an identity-verification upload. Only metadata is kept
// here; binary storage is out of scope.
type KYCDocument struct {
	ID           uuid.UUID  `json:"id"`
	ProfileID    uuid.UUID  `json:"profile_id"`
	DocumentType string     `json:"document_type"`
	FileName     string     `json:"file_name"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// VerificationLevelFor derives the KYC tier from the set of approved document
// types: identity unlocks tier 1, financial records tier 2, a loan agreement
// tier 3. The levels are monotone, so the highest approved type wins.
func VerificationLevelFor(approvedTypes []string) int {
	level := 0
	for _, t := range approvedTypes {
		switch t {
		case DocumentTypeID:
			if level < 1 {
				level = 1
			}
		case DocumentTypeFinancial:
			if level < 2 {
				level = 2
			}
		case DocumentTypeLoan:
			if level < 3 {
				level = 3
			}
		}
	}
	return level
}

const referenceAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTransactionReference returns a random 17-character ledger reference,
// the same shape the legacy system stamped on every wallet transaction.
func NewTransactionReference() string {
	b := make([]byte, 17)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable for reference generation;
		// fall back to a UUID-derived reference rather than panicking.
		u := uuid.New().String()
		return u[:8] + u[9:13] + u[14:19]
	}
	for i := range b {
		b[i] = referenceAlphabet[int(b[i])%len(referenceAlphabet)]
	}
	return string(b)
}

// RegisterRequest is the DTO for account registration.
type RegisterRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"` // referrer's username
}

// LoginRequest is the DTO for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Account bundles the three records provisioned together at registration.
type Account struct {
	User    User    `json:"user"`
	Profile Profile `json:"profile"`
	Wallet  Wallet  `json:"wallet"`
}

// DepositRequest is the DTO for starting a wallet deposit.
type DepositRequest struct {
	Amount  int64  `json:"amount"` // in cents
	Message string `json:"message,omitempty"`
}

// UploadDocumentRequest is the DTO for submitting KYC document metadata.
type UploadDocumentRequest struct {
	DocumentType string `json:"document_type"`
	FileName     string `json:"file_name"`
	Notes        string `json:"notes,omitempty"`
}

// ReviewDocumentRequest is the DTO for an admin KYC review decision.
type ReviewDocumentRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}
