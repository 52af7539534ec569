/**
 * @description
 * This file contains the business logic for the investment plan catalog: the
 * public listing and detail views, and the admin write paths for plans,
 * portfolio assets and promotion grants.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
)

// PlanRepository defines the database operations the plan service needs.
type PlanRepository interface {
	ListPlans(ctx context.Context, filter domain.PlanFilter) ([]domain.InvestmentPlan, error)
	GetPlanByID(ctx context.Context, planID uuid.UUID) (*domain.InvestmentPlan, error)
	CreatePlan(ctx context.Context, p *domain.InvestmentPlan) (*domain.InvestmentPlan, error)
	UpdatePlan(ctx context.Context, p *domain.InvestmentPlan) (*domain.InvestmentPlan, error)
	ListPlanAssets(ctx context.Context, planID uuid.UUID) ([]domain.PlanPortfolioAsset, error)
	AddPlanAsset(ctx context.Context, a *domain.PlanPortfolioAsset) (*domain.PlanPortfolioAsset, error)
	UpdateAssetPrice(ctx context.Context, assetID uuid.UUID, price int64) (*domain.PlanPortfolioAsset, error)
	ListActiveGrants(ctx context.Context, planID uuid.UUID, now time.Time) ([]domain.PromotionGrant, error)
	ListPlanGrants(ctx context.Context, planID uuid.UUID) ([]domain.PromotionGrant, error)
	CreateGrant(ctx context.Context, g *domain.PromotionGrant) (*domain.PromotionGrant, error)
	DeactivateGrant(ctx context.Context, grantID uuid.UUID) error
}

// LiveSubscriptionFinder is the slice of the subscription store the plan
// detail view needs to flag plans the caller is already invested in.
type LiveSubscriptionFinder interface {
	FindLiveSubscription(ctx context.Context, profileID, planID uuid.UUID) (*domain.Subscription, error)
}

// PlanService provides the business logic for the plan catalog.
type PlanService struct {
	repo   PlanRepository
	subs   LiveSubscriptionFinder
	logger *slog.Logger
}

// NewPlanService creates a new plan catalog service.
func NewPlanService(repo PlanRepository, subs LiveSubscriptionFinder, logger *slog.Logger) *PlanService {
	return &PlanService{repo: repo, subs: subs, logger: logger}
}

// ListPlans returns the active catalog filtered by category, risk level and
// free-text search.
func (s *PlanService) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]domain.InvestmentPlan, error) {
	if !filter.Valid() {
		return nil, invalidf("filter", "unknown category or risk level")
	}
	return s.repo.ListPlans(ctx, filter)
}

// GetPlanDetail returns one plan with its active holdings, the promotions
// currently running on it, and whether the caller already holds a live
// subscription. profileID is nil for unauthenticated callers.
func (s *PlanService) GetPlanDetail(ctx context.Context, planID uuid.UUID, profileID *uuid.UUID) (*domain.PlanDetail, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, store.ErrPlanNotFound
	}

	assets, err := s.repo.ListPlanAssets(ctx, planID)
	if err != nil {
		return nil, err
	}
	grants, err := s.repo.ListActiveGrants(ctx, planID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	detail := &domain.PlanDetail{
		Plan:       *plan,
		Assets:     assets,
		Promotions: grants,
	}
	if profileID != nil {
		_, err := s.subs.FindLiveSubscription(ctx, *profileID, planID)
		switch {
		case err == nil:
			detail.HasSubscription = true
		case errors.Is(err, store.ErrSubscriptionNotFound):
		default:
			return nil, err
		}
	}
	return detail, nil
}

func validatePlan(p *domain.InvestmentPlan) error {
	if p.Name == "" {
		return invalidf("name", "is required")
	}
	if !contains(domain.PlanCategories, p.Category) {
		return invalidf("category", "unknown category %q", p.Category)
	}
	if !contains(domain.RiskLevels, p.RiskLevel) {
		return invalidf("risk_level", "unknown risk level %q", p.RiskLevel)
	}
	if p.MinimumInvestment <= 0 {
		return invalidf("minimum_investment", "must be positive")
	}
	if p.MaximumInvestment != nil && *p.MaximumInvestment < p.MinimumInvestment {
		return invalidf("maximum_investment", "must not be below the minimum investment")
	}
	if p.DurationMonths <= 0 {
		return invalidf("duration_months", "must be positive")
	}
	if err := p.ValidateAllocation(); err != nil {
		return invalidf("allocation", "%s", err.Error())
	}
	return nil
}

// CreatePlan adds a plan to the catalog. The asset-class allocation must sum
// to 100 before anything is written.
func (s *PlanService) CreatePlan(ctx context.Context, p *domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	if err := validatePlan(p); err != nil {
		return nil, err
	}
	created, err := s.repo.CreatePlan(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("plan created", "plan_id", created.ID, "name", created.Name)
	return created, nil
}

// UpdatePlan overwrites an existing plan's editable fields under the same
// validation as creation.
func (s *PlanService) UpdatePlan(ctx context.Context, p *domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	if err := validatePlan(p); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdatePlan(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("plan updated", "plan_id", updated.ID, "name", updated.Name)
	return updated, nil
}

// AddGrant attaches a promotion grant to a plan. Exactly one of the fixed
// amount and the percentage must be set.
func (s *PlanService) AddGrant(ctx context.Context, g *domain.PromotionGrant) (*domain.PromotionGrant, error) {
	if !contains(domain.GrantTypes, g.GrantType) {
		return nil, invalidf("grant_type", "unknown grant type %q", g.GrantType)
	}
	if g.Name == "" {
		return nil, invalidf("name", "is required")
	}
	hasFixed := g.GrantAmount != nil && *g.GrantAmount > 0
	hasPct := g.GrantPercentageBps != nil && *g.GrantPercentageBps > 0
	if hasFixed == hasPct {
		return nil, invalidf("grant_amount", "exactly one of grant_amount and grant_percentage_bps must be set")
	}
	if g.MinimumInvestmentRequired < 0 {
		return nil, invalidf("minimum_investment_required", "must not be negative")
	}
	if !g.ValidUntil.After(g.ValidFrom) {
		return nil, invalidf("valid_until", "must be after valid_from")
	}
	created, err := s.repo.CreateGrant(ctx, g)
	if err != nil {
		return nil, err
	}
	s.logger.Info("promotion grant created", "grant_id", created.ID, "plan_id", created.PlanID, "type", created.GrantType)
	return created, nil
}

// AddAsset attaches a portfolio holding to a plan.
func (s *PlanService) AddAsset(ctx context.Context, a *domain.PlanPortfolioAsset) (*domain.PlanPortfolioAsset, error) {
	if !contains(domain.AssetTypes, a.AssetType) {
		return nil, invalidf("asset_type", "unknown asset type %q", a.AssetType)
	}
	if a.Symbol == "" {
		return nil, invalidf("symbol", "is required")
	}
	if a.AllocationBps <= 0 || a.AllocationBps > 10000 {
		return nil, invalidf("allocation_bps", "must be within (0, 10000]")
	}
	if a.CurrentPrice < 0 {
		return nil, invalidf("current_price", "must not be negative")
	}
	return s.repo.AddPlanAsset(ctx, a)
}

// UpdateAssetPrice stamps a new market price on a holding.
func (s *PlanService) UpdateAssetPrice(ctx context.Context, assetID uuid.UUID, price int64) (*domain.PlanPortfolioAsset, error) {
	if price < 0 {
		return nil, invalidf("price", "must not be negative")
	}
	return s.repo.UpdateAssetPrice(ctx, assetID, price)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
