package domain

import (
	"testing"
	"time"
)

func activeGrant(mutate func(*PromotionGrant)) PromotionGrant {
	now := time.Now().UTC()
	g := PromotionGrant{
		GrantType:  GrantTypeWelcomeBonus,
		Name:       "test grant",
		ValidFrom:  now.Add(-24 * time.Hour),
		ValidUntil: now.Add(24 * time.Hour),
		IsActive:   true,
	}
	if mutate != nil {
		mutate(&g)
	}
	return g
}

func TestGrantCalculate_ZeroWhenInactive(t *testing.T) {
	amount := int64(10000)
	g := activeGrant(func(g *PromotionGrant) {
		g.GrantAmount = &amount
		g.IsActive = false
	})

	if bonus := g.Calculate(100000, time.Now().UTC()); bonus != 0 {
		t.Fatalf("expected zero bonus for inactive grant, got %d", bonus)
	}
}

func TestGrantCalculate_ZeroOutsideWindow(t *testing.T) {
	amount := int64(10000)
	g := activeGrant(func(g *PromotionGrant) {
		g.GrantAmount = &amount
	})

	before := g.ValidFrom.Add(-time.Minute)
	after := g.ValidUntil.Add(time.Minute)
	if bonus := g.Calculate(100000, before); bonus != 0 {
		t.Fatalf("expected zero bonus before valid_from, got %d", bonus)
	}
	if bonus := g.Calculate(100000, after); bonus != 0 {
		t.Fatalf("expected zero bonus after valid_until, got %d", bonus)
	}
}

func TestGrantCalculate_FixedAmountCappedByInvestment(t *testing.T) {
	fixed := int64(20000)
	g := activeGrant(func(g *PromotionGrant) {
		g.GrantAmount = &fixed
	})

	if bonus := g.Calculate(100000, time.Now().UTC()); bonus != 20000 {
		t.Fatalf("expected the full fixed amount, got %d", bonus)
	}
	// A fixed grant never exceeds the investment itself.
	if bonus := g.Calculate(5000, time.Now().UTC()); bonus != 5000 {
		t.Fatalf("expected fixed amount clamped to investment, got %d", bonus)
	}
}

func TestGrantCalculate_PercentageFlooredAndCapped(t *testing.T) {
	pct := int64(500) // 5.00%
	cap := int64(50000)
	g := activeGrant(func(g *PromotionGrant) {
		g.GrantPercentageBps = &pct
		g.MaximumGrantPerUser = &cap
	})

	// 5% of $100 is $5.
	if bonus := g.Calculate(10000, time.Now().UTC()); bonus != 500 {
		t.Fatalf("expected 500, got %d", bonus)
	}
	// 5% of $33.33 floors to the cent.
	if bonus := g.Calculate(3333, time.Now().UTC()); bonus != 166 {
		t.Fatalf("expected floored 166, got %d", bonus)
	}
	// 5% of $20,000 would be $1,000; the cap holds it at $500.
	if bonus := g.Calculate(2000000, time.Now().UTC()); bonus != 50000 {
		t.Fatalf("expected capped 50000, got %d", bonus)
	}
}

func TestGrantCalculate_FixedWinsWhenBothSet(t *testing.T) {
	fixed := int64(1000)
	pct := int64(500)
	g := activeGrant(func(g *PromotionGrant) {
		g.GrantAmount = &fixed
		g.GrantPercentageBps = &pct
	})

	if bonus := g.Calculate(100000, time.Now().UTC()); bonus != 1000 {
		t.Fatalf("expected the fixed amount to win, got %d", bonus)
	}
}

func TestGrantCalculate_ZeroWhenNeitherSet(t *testing.T) {
	g := activeGrant(nil)
	if bonus := g.Calculate(100000, time.Now().UTC()); bonus != 0 {
		t.Fatalf("expected zero bonus when no amount or percentage is set, got %d", bonus)
	}
}

func TestTotalGrantBonus_IndependentMinimumGates(t *testing.T) {
	pct := int64(500)
	fixed := int64(20000)
	grants := []PromotionGrant{
		activeGrant(func(g *PromotionGrant) {
			g.GrantPercentageBps = &pct
			g.MinimumInvestmentRequired = 10000
		}),
		activeGrant(func(g *PromotionGrant) {
			g.GrantAmount = &fixed
			g.MinimumInvestmentRequired = 100000
		}),
	}

	// $100 clears only the first gate: 5% of $100 = $5.
	if total := TotalGrantBonus(grants, 10000, time.Now().UTC()); total != 500 {
		t.Fatalf("expected 500, got %d", total)
	}
	// $1,000 clears both: $50 + $200.
	if total := TotalGrantBonus(grants, 100000, time.Now().UTC()); total != 25000 {
		t.Fatalf("expected 25000, got %d", total)
	}
	// $50 clears neither.
	if total := TotalGrantBonus(grants, 5000, time.Now().UTC()); total != 0 {
		t.Fatalf("expected 0, got %d", total)
	}
}
