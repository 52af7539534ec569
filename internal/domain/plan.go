/**
 * @description
 * This file defines the domain models for the investment plan catalog: the plans
 * themselves and the concrete portfolio assets held inside each plan.
 *
 * @notes
 * - Monetary amounts are stored as `int64` in cents to avoid floating-point
 *   inaccuracies with financial data.
 * - Rates (returns, fees, penalties) are stored in basis points of a percent,
 *   i.e. hundredths: 12.50% is 1250. Asset-class allocations are whole percents.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Plan categories map each portfolio to the investor profile it targets.
const (
	PlanCategoryStarter    = "starter"
	PlanCategoryCouples    = "couples"
	PlanCategoryRetirement = "retirement"
	PlanCategoryEducation  = "education"
	PlanCategoryTravel     = "travel"
	PlanCategoryEmergency  = "emergency"
	PlanCategoryWealth     = "wealth"
	PlanCategoryCrypto     = "crypto"
)

// Risk levels.
const (
	RiskLevelLow      = "low"
	RiskLevelModerate = "moderate"
	RiskLevelHigh     = "high"
)

// PlanCategories lists every valid plan category.
var PlanCategories = []string{
	PlanCategoryStarter, PlanCategoryCouples, PlanCategoryRetirement,
	PlanCategoryEducation, PlanCategoryTravel, PlanCategoryEmergency,
	PlanCategoryWealth, PlanCategoryCrypto,
}

// RiskLevels lists every valid risk level.
var RiskLevels = []string{RiskLevelLow, RiskLevelModerate, RiskLevelHigh}

// InvestmentPlan represents a predefined target portfolio users can subscribe to.
// This struct maps directly to the `investment_plans` table.
type InvestmentPlan struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	RiskLevel   string    `json:"risk_level"`

	MinimumInvestment     int64  `json:"minimum_investment"`               // in cents
	RecommendedInvestment int64  `json:"recommended_investment"`           // in cents
	MaximumInvestment     *int64 `json:"maximum_investment,omitempty"`     // in cents

	ExpectedAnnualReturnBps   int64  `json:"expected_annual_return_bps"`
	HistoricalPerformanceBps  *int64 `json:"historical_performance_bps,omitempty"`

	CryptoAllocation     int `json:"crypto_allocation"`
	RealEstateAllocation int `json:"real_estate_allocation"`
	StocksAllocation     int `json:"stocks_allocation"`
	BondsAllocation      int `json:"bonds_allocation"`
	CashAllocation       int `json:"cash_allocation"`

	DurationMonths            int   `json:"duration_months"`
	EarlyWithdrawalPenaltyBps int64 `json:"early_withdrawal_penalty_bps"`

	IsAutomatedRebalancing    bool `json:"is_automated_rebalancing"`
	IsTaxOptimized            bool `json:"is_tax_optimized"`
	AllowsMonthlyContribution bool `json:"allows_monthly_contribution"`
	AllowsLumpSum             bool `json:"allows_lump_sum"`

	ManagementFeeBps  int64 `json:"management_fee_bps"`
	CurrentAUM        int64 `json:"current_aum"` // in cents
	NumberOfInvestors int   `json:"number_of_investors"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetAllocation returns the plan's target asset-class split as a map of
// asset class to whole-percent weight.
func (p *InvestmentPlan) AssetAllocation() map[string]int {
	return map[string]int{
		"crypto":      p.CryptoAllocation,
		"real_estate": p.RealEstateAllocation,
		"stocks":      p.StocksAllocation,
		"bonds":       p.BondsAllocation,
		"cash":        p.CashAllocation,
	}
}

// ValidateAllocation checks that the five asset-class percentages sum to 100.
// Unlike the legacy system, this is enforced whenever a plan is created or updated.
func (p *InvestmentPlan) ValidateAllocation() error {
	total := p.CryptoAllocation + p.RealEstateAllocation + p.StocksAllocation +
		p.BondsAllocation + p.CashAllocation
	if total != 100 {
		return fmt.Errorf("asset allocations must sum to 100, got %d", total)
	}
	return nil
}

// Asset types a plan portfolio can hold.
const (
	AssetTypeCrypto     = "crypto"
	AssetTypeStock      = "stock"
	AssetTypeBond       = "bond"
	AssetTypeRealEstate = "real_estate"
	AssetTypeCommodity  = "commodity"
	AssetTypeCash       = "cash"
)

// AssetTypes lists every valid portfolio asset type.
var AssetTypes = []string{
	AssetTypeCrypto, AssetTypeStock, AssetTypeBond,
	AssetTypeRealEstate, AssetTypeCommodity, AssetTypeCash,
}

// PlanPortfolioAsset is a concrete holding inside a plan, e.g. BTC or SPY.
// Prices move independently of the plan definition.
type PlanPortfolioAsset struct {
	ID          uuid.UUID `json:"id"`
	PlanID      uuid.UUID `json:"plan_id"`
	AssetType   string    `json:"asset_type"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`

	AllocationBps int64 `json:"allocation_bps"` // share of the plan, hundredths of a percent
	CurrentPrice  int64 `json:"current_price"`  // in cents

	PriceUpdatedAt time.Time `json:"price_updated_at"`
	IsActive       bool      `json:"is_active"`
	AddedAt        time.Time `json:"added_at"`
}

// PlanFilter narrows the plan catalog listing.
type PlanFilter struct {
	Category  string
	RiskLevel string
	Search    string
}

// Valid reports whether the filter's enum fields, when set, are known values.
func (f PlanFilter) Valid() bool {
	if f.Category != "" && !contains(PlanCategories, f.Category) {
		return false
	}
	if f.RiskLevel != "" && !contains(RiskLevels, f.RiskLevel) {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
