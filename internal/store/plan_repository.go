/**
 * @description
 * This file provides the PostgreSQL repository for the investment plan catalog:
 * plans, their portfolio assets and the promotion grants attached to them. It
 * contains all SQL for both the public catalog reads and the admin write paths.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

const planColumns = `
	id, name, category, description, risk_level,
	minimum_investment, recommended_investment, maximum_investment,
	expected_annual_return_bps, historical_performance_bps,
	crypto_allocation, real_estate_allocation, stocks_allocation, bonds_allocation, cash_allocation,
	duration_months, early_withdrawal_penalty_bps,
	is_automated_rebalancing, is_tax_optimized, allows_monthly_contribution, allows_lump_sum,
	management_fee_bps, current_aum, number_of_investors,
	is_active, created_at, updated_at`

// PlanRepository is the PostgreSQL-backed store for the plan catalog.
type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository creates a new instance of PlanRepository.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row pgx.Row) (*domain.InvestmentPlan, error) {
	var p domain.InvestmentPlan
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Description, &p.RiskLevel,
		&p.MinimumInvestment, &p.RecommendedInvestment, &p.MaximumInvestment,
		&p.ExpectedAnnualReturnBps, &p.HistoricalPerformanceBps,
		&p.CryptoAllocation, &p.RealEstateAllocation, &p.StocksAllocation, &p.BondsAllocation, &p.CashAllocation,
		&p.DurationMonths, &p.EarlyWithdrawalPenaltyBps,
		&p.IsAutomatedRebalancing, &p.IsTaxOptimized, &p.AllowsMonthlyContribution, &p.AllowsLumpSum,
		&p.ManagementFeeBps, &p.CurrentAUM, &p.NumberOfInvestors,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans returns the active plans matching the filter, ordered by the
// minimum investment ascending so entry-level plans come first.
func (r *PlanRepository) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]domain.InvestmentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM investment_plans WHERE is_active = TRUE`
	args := []interface{}{}
	argn := 0

	if filter.Category != "" {
		argn++
		query += fmt.Sprintf(" AND category = $%d", argn)
		args = append(args, filter.Category)
	}
	if filter.RiskLevel != "" {
		argn++
		query += fmt.Sprintf(" AND risk_level = $%d", argn)
		args = append(args, filter.RiskLevel)
	}
	if filter.Search != "" {
		argn++
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argn, argn)
		args = append(args, "%"+filter.Search+"%")
	}
	query += " ORDER BY minimum_investment ASC, name ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []domain.InvestmentPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// GetPlanByID retrieves a single plan regardless of its active flag.
func (r *PlanRepository) GetPlanByID(ctx context.Context, planID uuid.UUID) (*domain.InvestmentPlan, error) {
	query := `SELECT ` + planColumns + ` FROM investment_plans WHERE id = $1`
	p, err := scanPlan(r.db.QueryRow(ctx, query, planID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return p, nil
}

// CreatePlan inserts a new plan and returns it with generated fields populated.
func (r *PlanRepository) CreatePlan(ctx context.Context, p *domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	query := `
		INSERT INTO investment_plans (
			name, category, description, risk_level,
			minimum_investment, recommended_investment, maximum_investment,
			expected_annual_return_bps, historical_performance_bps,
			crypto_allocation, real_estate_allocation, stocks_allocation, bonds_allocation, cash_allocation,
			duration_months, early_withdrawal_penalty_bps,
			is_automated_rebalancing, is_tax_optimized, allows_monthly_contribution, allows_lump_sum,
			management_fee_bps, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22
		)
		RETURNING ` + planColumns
	created, err := scanPlan(r.db.QueryRow(ctx, query,
		p.Name, p.Category, p.Description, p.RiskLevel,
		p.MinimumInvestment, p.RecommendedInvestment, p.MaximumInvestment,
		p.ExpectedAnnualReturnBps, p.HistoricalPerformanceBps,
		p.CryptoAllocation, p.RealEstateAllocation, p.StocksAllocation, p.BondsAllocation, p.CashAllocation,
		p.DurationMonths, p.EarlyWithdrawalPenaltyBps,
		p.IsAutomatedRebalancing, p.IsTaxOptimized, p.AllowsMonthlyContribution, p.AllowsLumpSum,
		p.ManagementFeeBps, p.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePlanName
		}
		return nil, err
	}
	return created, nil
}

// UpdatePlan overwrites the editable fields of an existing plan.
func (r *PlanRepository) UpdatePlan(ctx context.Context, p *domain.InvestmentPlan) (*domain.InvestmentPlan, error) {
	query := `
		UPDATE investment_plans SET
			name = $2, category = $3, description = $4, risk_level = $5,
			minimum_investment = $6, recommended_investment = $7, maximum_investment = $8,
			expected_annual_return_bps = $9, historical_performance_bps = $10,
			crypto_allocation = $11, real_estate_allocation = $12, stocks_allocation = $13,
			bonds_allocation = $14, cash_allocation = $15,
			duration_months = $16, early_withdrawal_penalty_bps = $17,
			is_automated_rebalancing = $18, is_tax_optimized = $19,
			allows_monthly_contribution = $20, allows_lump_sum = $21,
			management_fee_bps = $22, is_active = $23,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns
	updated, err := scanPlan(r.db.QueryRow(ctx, query,
		p.ID,
		p.Name, p.Category, p.Description, p.RiskLevel,
		p.MinimumInvestment, p.RecommendedInvestment, p.MaximumInvestment,
		p.ExpectedAnnualReturnBps, p.HistoricalPerformanceBps,
		p.CryptoAllocation, p.RealEstateAllocation, p.StocksAllocation, p.BondsAllocation, p.CashAllocation,
		p.DurationMonths, p.EarlyWithdrawalPenaltyBps,
		p.IsAutomatedRebalancing, p.IsTaxOptimized, p.AllowsMonthlyContribution, p.AllowsLumpSum,
		p.ManagementFeeBps, p.IsActive,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPlanNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePlanName
		}
		return nil, err
	}
	return updated, nil
}

const assetColumns = `
	id, plan_id, asset_type, symbol, name, description,
	allocation_bps, current_price, price_updated_at, is_active, added_at`

func scanAsset(row pgx.Row) (*domain.PlanPortfolioAsset, error) {
	var a domain.PlanPortfolioAsset
	err := row.Scan(
		&a.ID, &a.PlanID, &a.AssetType, &a.Symbol, &a.Name, &a.Description,
		&a.AllocationBps, &a.CurrentPrice, &a.PriceUpdatedAt, &a.IsActive, &a.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListPlanAssets returns the active holdings of a plan, heaviest allocation first.
func (r *PlanRepository) ListPlanAssets(ctx context.Context, planID uuid.UUID) ([]domain.PlanPortfolioAsset, error) {
	query := `SELECT ` + assetColumns + `
		FROM plan_portfolio_assets
		WHERE plan_id = $1 AND is_active = TRUE
		ORDER BY allocation_bps DESC, symbol ASC`
	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []domain.PlanPortfolioAsset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// AddPlanAsset inserts a new portfolio holding under a plan.
func (r *PlanRepository) AddPlanAsset(ctx context.Context, a *domain.PlanPortfolioAsset) (*domain.PlanPortfolioAsset, error) {
	query := `
		INSERT INTO plan_portfolio_assets (
			plan_id, asset_type, symbol, name, description,
			allocation_bps, current_price, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + assetColumns
	created, err := scanAsset(r.db.QueryRow(ctx, query,
		a.PlanID, a.AssetType, a.Symbol, a.Name, a.Description,
		a.AllocationBps, a.CurrentPrice, a.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return created, nil
}

// UpdateAssetPrice stamps a new market price on a holding.
func (r *PlanRepository) UpdateAssetPrice(ctx context.Context, assetID uuid.UUID, price int64) (*domain.PlanPortfolioAsset, error) {
	query := `
		UPDATE plan_portfolio_assets
		SET current_price = $2, price_updated_at = NOW()
		WHERE id = $1
		RETURNING ` + assetColumns
	updated, err := scanAsset(r.db.QueryRow(ctx, query, assetID, price))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return updated, nil
}

const grantColumns = `
	id, plan_id, grant_type, name, description,
	grant_amount, grant_percentage_bps,
	minimum_investment_required, maximum_grant_per_user,
	valid_from, valid_until, is_active, created_at`

func scanGrant(row pgx.Row) (*domain.PromotionGrant, error) {
	var g domain.PromotionGrant
	err := row.Scan(
		&g.ID, &g.PlanID, &g.GrantType, &g.Name, &g.Description,
		&g.GrantAmount, &g.GrantPercentageBps,
		&g.MinimumInvestmentRequired, &g.MaximumGrantPerUser,
		&g.ValidFrom, &g.ValidUntil, &g.IsActive, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListActiveGrants returns the grants on a plan that are live at the given time.
func (r *PlanRepository) ListActiveGrants(ctx context.Context, planID uuid.UUID, now time.Time) ([]domain.PromotionGrant, error) {
	query := `SELECT ` + grantColumns + `
		FROM plan_promotion_grants
		WHERE plan_id = $1 AND is_active = TRUE AND valid_from <= $2 AND valid_until >= $2
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, planID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := []domain.PromotionGrant{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

// ListPlanGrants returns every grant on a plan, live or not, for admin views.
func (r *PlanRepository) ListPlanGrants(ctx context.Context, planID uuid.UUID) ([]domain.PromotionGrant, error) {
	query := `SELECT ` + grantColumns + `
		FROM plan_promotion_grants
		WHERE plan_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants := []domain.PromotionGrant{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

// CreateGrant inserts a new promotion grant under a plan.
func (r *PlanRepository) CreateGrant(ctx context.Context, g *domain.PromotionGrant) (*domain.PromotionGrant, error) {
	query := `
		INSERT INTO plan_promotion_grants (
			plan_id, grant_type, name, description,
			grant_amount, grant_percentage_bps,
			minimum_investment_required, maximum_grant_per_user,
			valid_from, valid_until, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + grantColumns
	created, err := scanGrant(r.db.QueryRow(ctx, query,
		g.PlanID, g.GrantType, g.Name, g.Description,
		g.GrantAmount, g.GrantPercentageBps,
		g.MinimumInvestmentRequired, g.MaximumGrantPerUser,
		g.ValidFrom, g.ValidUntil, g.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return created, nil
}

// DeactivateGrant switches a grant off without deleting its history.
func (r *PlanRepository) DeactivateGrant(ctx context.Context, grantID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE plan_promotion_grants SET is_active = FALSE WHERE id = $1`, grantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGrantNotFound
	}
	return nil
}
