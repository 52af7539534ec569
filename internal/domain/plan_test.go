package domain

import "testing"

func balancedPlan() InvestmentPlan {
	return InvestmentPlan{
		Name:                 "Balanced Growth",
		Category:             PlanCategoryStarter,
		RiskLevel:            RiskLevelModerate,
		CryptoAllocation:     10,
		RealEstateAllocation: 20,
		StocksAllocation:     40,
		BondsAllocation:      20,
		CashAllocation:       10,
	}
}

func TestValidateAllocation(t *testing.T) {
	p := balancedPlan()
	if err := p.ValidateAllocation(); err != nil {
		t.Fatalf("expected a balanced plan to validate, got %v", err)
	}

	p.CashAllocation = 5
	if err := p.ValidateAllocation(); err == nil {
		t.Fatal("expected an error when allocations sum to 95")
	}

	p.CashAllocation = 15
	if err := p.ValidateAllocation(); err == nil {
		t.Fatal("expected an error when allocations sum to 105")
	}
}

func TestAssetAllocation(t *testing.T) {
	p := balancedPlan()
	alloc := p.AssetAllocation()

	if len(alloc) != 5 {
		t.Fatalf("expected 5 asset classes, got %d", len(alloc))
	}
	if alloc["stocks"] != 40 || alloc["crypto"] != 10 || alloc["cash"] != 10 {
		t.Fatalf("unexpected allocation map: %v", alloc)
	}
}

func TestPlanFilterValid(t *testing.T) {
	cases := []struct {
		name   string
		filter PlanFilter
		want   bool
	}{
		{"empty", PlanFilter{}, true},
		{"known category", PlanFilter{Category: PlanCategoryCrypto}, true},
		{"known risk", PlanFilter{RiskLevel: RiskLevelHigh}, true},
		{"search only", PlanFilter{Search: "growth"}, true},
		{"unknown category", PlanFilter{Category: "yachts"}, false},
		{"unknown risk", PlanFilter{RiskLevel: "extreme"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Valid(); got != tc.want {
				t.Fatalf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}
