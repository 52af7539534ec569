/**
 * @description
 * This file defines the domain models for user investment subscriptions and
 * their monthly contribution schedules, plus the DTOs the API layer returns
 * for the dashboard and subscription detail views.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses. Completed and cancelled are terminal.
const (
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCompleted = "completed"
	SubscriptionCancelled = "cancelled"
)

// LiveSubscriptionStatuses are the non-terminal states; at most one live
// subscription may exist per (profile, plan) pair.
var LiveSubscriptionStatuses = []string{SubscriptionActive, SubscriptionPaused}

// Subscription tracks a user's enrollment in an investment plan.
// This struct maps directly to the `subscriptions` table.
type Subscription struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	PlanID    uuid.UUID `json:"plan_id"`

	InitialInvestment int64 `json:"initial_investment"` // in cents
	CurrentValue      int64 `json:"current_value"`      // in cents
	TotalContributed  int64 `json:"total_contributed"`  // in cents
	TotalReturns      int64 `json:"total_returns"`      // in cents

	Status string `json:"status"`

	StartDate      time.Time  `json:"start_date"`
	PlannedEndDate time.Time  `json:"planned_end_date"`
	ActualEndDate  *time.Time `json:"actual_end_date,omitempty"`

	MonthlyContribution  *int64     `json:"monthly_contribution,omitempty"` // in cents
	NextContributionDate *time.Time `json:"next_contribution_date,omitempty"`

	ROIBps           int64      `json:"roi_bps"`
	LastRebalanceAt  *time.Time `json:"last_rebalance_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// ContributionInterval approximates one month as a fixed 30 days; planned end
// dates and next-contribution dates are not calendar-accurate on purpose.
const ContributionInterval = 30 * 24 * time.Hour

// CalculateROI recomputes the return-on-investment in basis points from the
// current value and the initial investment, stores it on the subscription and
// returns it. ROI is defined as zero when the initial investment is not positive.
// Callers must treat the stored value as derived, never authoritative.
func (s *Subscription) CalculateROI() int64 {
	if s.InitialInvestment <= 0 {
		s.ROIBps = 0
		return 0
	}
	s.ROIBps = (s.CurrentValue - s.InitialInvestment) * 10000 / s.InitialInvestment
	return s.ROIBps
}

// ROIPercent renders the stored ROI as a two-decimal percentage.
func (s *Subscription) ROIPercent() float64 {
	return float64(s.ROIBps) / 100
}

// DurationRemaining returns the whole days left until the planned end date.
// Only active subscriptions have a remaining duration; everything else is zero.
func (s *Subscription) DurationRemaining(now time.Time) int {
	if s.Status != SubscriptionActive {
		return 0
	}
	days := int(s.PlannedEndDate.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// IsLive reports whether the subscription is in a non-terminal state.
func (s *Subscription) IsLive() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionPaused
}

// Contribution schedule statuses.
const (
	ContributionScheduled = "scheduled"
	ContributionCompleted = "completed"
	ContributionFailed    = "failed"
	ContributionSkipped   = "skipped"
)

// ContributionSchedule is one planned (or settled) monthly contribution row
// linked to a subscription.
type ContributionSchedule struct {
	ID             uuid.UUID  `json:"id"`
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	ScheduledDate  time.Time  `json:"scheduled_date"`
	Amount         int64      `json:"amount"` // in cents
	ActualDate     *time.Time `json:"actual_date,omitempty"`
	ActualAmount   *int64     `json:"actual_amount,omitempty"`
	Status         string     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
}

// SubscribeRequest is the DTO for incoming plan subscription API requests.
type SubscribeRequest struct {
	InitialInvestment   int64  `json:"initial_investment"` // in cents
	MonthlyContribution *int64 `json:"monthly_contribution,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// ContributeRequest is the DTO for adding a one-off contribution.
type ContributeRequest struct {
	Amount int64 `json:"amount"` // in cents
}

// DashboardSummary aggregates the caller's live subscriptions.
type DashboardSummary struct {
	Subscriptions        []Subscription         `json:"subscriptions"`
	SubscriptionCount    int                    `json:"subscription_count"`
	TotalInvested        int64                  `json:"total_invested"` // in cents
	CurrentValue         int64                  `json:"current_value"`  // in cents
	TotalGain            int64                  `json:"total_gain"`     // in cents
	OverallROIPercent    float64                `json:"overall_roi_percent"`
	MonthlyContributions int64                  `json:"monthly_contributions"` // in cents
	RecentContributions  []ContributionSchedule `json:"recent_contributions"`
}

// SubscriptionDetail is the full view of one subscription: the plan it belongs
// to, the plan's active holdings and the asset-class allocation breakdown.
type SubscriptionDetail struct {
	Subscription    Subscription           `json:"subscription"`
	Plan            InvestmentPlan         `json:"plan"`
	PortfolioAssets []PlanPortfolioAsset   `json:"portfolio_assets"`
	AssetAllocation map[string]int         `json:"asset_allocation"`
	Contributions   []ContributionSchedule `json:"contributions"`
	ROIPercent      float64                `json:"roi_percent"`
	RemainingDays   int                    `json:"remaining_days"`
}

// PlanDetail is the public view of one plan with its holdings and the
// promotions currently running on it.
type PlanDetail struct {
	Plan            InvestmentPlan       `json:"plan"`
	Assets          []PlanPortfolioAsset `json:"assets"`
	Promotions      []PromotionGrant     `json:"promotions"`
	HasSubscription bool                 `json:"has_subscription"`
}
