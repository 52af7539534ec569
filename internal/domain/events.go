/**
 * @description
 * Event payloads published to RabbitMQ when investment and wallet state changes.
 * Downstream consumers (notifications, analytics) key off the routing keys below.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for the investment events exchange.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionPaused    = "subscription.paused"
	EventSubscriptionResumed   = "subscription.resumed"
	EventSubscriptionCompleted = "subscription.completed"
	EventContributionRecorded  = "subscription.contribution"
	EventDepositCredited       = "wallet.deposit.credited"
	EventKYCDocumentReviewed   = "kyc.document.reviewed"
)

// SubscriptionEvent is published on subscription lifecycle changes.
type SubscriptionEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	ProfileID      uuid.UUID `json:"profile_id"`
	PlanID         uuid.UUID `json:"plan_id"`
	Amount         int64     `json:"amount,omitempty"` // in cents
	GrantBonus     int64     `json:"grant_bonus,omitempty"`
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// ContributionEvent is published when a contribution settles.
type ContributionEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	ProfileID      uuid.UUID `json:"profile_id"`
	Amount         int64     `json:"amount"` // in cents
	Source         string    `json:"source"` // "manual" or "scheduled"
	Timestamp      time.Time `json:"timestamp"`
}

// DepositEvent is published when a wallet deposit is credited.
type DepositEvent struct {
	WalletID  uuid.UUID `json:"wallet_id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Amount    int64     `json:"amount"` // in cents
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

// KYCReviewEvent is published when an admin reviews a KYC document.
type KYCReviewEvent struct {
	DocumentID        uuid.UUID `json:"document_id"`
	ProfileID         uuid.UUID `json:"profile_id"`
	Status            string    `json:"status"`
	VerificationLevel int       `json:"verification_level"`
	Timestamp         time.Time `json:"timestamp"`
}
