/**
 * @description
 * Promotion grants: time-boxed bonuses credited when a user subscribes to a plan.
 * A grant is either a fixed amount or a percentage of the investment, gated by a
 * minimum investment and optionally capped per user.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Grant types.
const (
	GrantTypeWelcomeBonus = "welcome_bonus"
	GrantTypeReferral     = "referral"
	GrantTypeMilestone    = "milestone"
	GrantTypeSeasonal     = "seasonal"
	GrantTypeLoyalty      = "loyalty"
)

// GrantTypes lists every valid promotion grant type.
var GrantTypes = []string{
	GrantTypeWelcomeBonus, GrantTypeReferral, GrantTypeMilestone,
	GrantTypeSeasonal, GrantTypeLoyalty,
}

// PromotionGrant is a bonus rule attached to an investment plan.
// Exactly one of GrantAmount and GrantPercentageBps is expected to be set;
// when both are set the fixed amount wins, matching the legacy behavior.
type PromotionGrant struct {
	ID          uuid.UUID `json:"id"`
	PlanID      uuid.UUID `json:"plan_id"`
	GrantType   string    `json:"grant_type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`

	GrantAmount        *int64 `json:"grant_amount,omitempty"`         // fixed bonus in cents
	GrantPercentageBps *int64 `json:"grant_percentage_bps,omitempty"` // e.g. 5.00% = 500

	MinimumInvestmentRequired int64  `json:"minimum_investment_required"` // in cents
	MaximumGrantPerUser       *int64 `json:"maximum_grant_per_user,omitempty"`

	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidAt reports whether the grant is active and inside its validity window.
func (g *PromotionGrant) IsValidAt(now time.Time) bool {
	return g.IsActive && !now.Before(g.ValidFrom) && !now.After(g.ValidUntil)
}

// Calculate returns the bonus in cents for the given investment amount.
// It fails closed: an inactive or out-of-window grant yields zero regardless
// of the amount. Percentage bonuses are floored to the cent.
func (g *PromotionGrant) Calculate(investmentAmount int64, now time.Time) int64 {
	if !g.IsValidAt(now) {
		return 0
	}

	var bonus int64
	switch {
	case g.GrantAmount != nil && *g.GrantAmount > 0:
		bonus = min64(*g.GrantAmount, investmentAmount)
	case g.GrantPercentageBps != nil && *g.GrantPercentageBps > 0:
		bonus = investmentAmount * *g.GrantPercentageBps / 10000
	default:
		return 0
	}

	if g.MaximumGrantPerUser != nil {
		bonus = min64(bonus, *g.MaximumGrantPerUser)
	}
	return bonus
}

// TotalGrantBonus sums the bonuses of every grant whose minimum-investment gate
// the amount clears. Grants are evaluated independently and combined additively;
// there is no cross-grant interaction rule.
func TotalGrantBonus(grants []PromotionGrant, investmentAmount int64, now time.Time) int64 {
	var total int64
	for i := range grants {
		g := &grants[i]
		if investmentAmount < g.MinimumInvestmentRequired {
			continue
		}
		total += g.Calculate(investmentAmount, now)
	}
	return total
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
