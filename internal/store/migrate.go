/**
 * @description
 * Embedded schema bootstrap. The statements are idempotent so every binary can
 * run them at startup against a fresh or existing database.
 */

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		phone_number TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		referred_by UUID REFERENCES profiles(id),
		refer_clicks INT NOT NULL DEFAULT 0,
		verification_level INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		profile_id UUID NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
		balance BIGINT NOT NULL DEFAULT 0,
		amount_invested BIGINT NOT NULL DEFAULT 0,
		btc_address TEXT,
		pin_hash TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		wallet_id UUID NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		amount BIGINT NOT NULL,
		direction TEXT NOT NULL,
		status TEXT NOT NULL,
		reference TEXT NOT NULL UNIQUE,
		message TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_transactions_wallet ON wallet_transactions(wallet_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS kyc_documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		document_type TEXT NOT NULL,
		file_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reviewed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_kyc_documents_profile ON kyc_documents(profile_id, uploaded_at DESC)`,

	`CREATE TABLE IF NOT EXISTS investment_plans (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		risk_level TEXT NOT NULL,
		minimum_investment BIGINT NOT NULL DEFAULT 10000,
		recommended_investment BIGINT NOT NULL,
		maximum_investment BIGINT,
		expected_annual_return_bps BIGINT NOT NULL,
		historical_performance_bps BIGINT,
		crypto_allocation INT NOT NULL DEFAULT 0,
		real_estate_allocation INT NOT NULL DEFAULT 0,
		stocks_allocation INT NOT NULL DEFAULT 0,
		bonds_allocation INT NOT NULL DEFAULT 0,
		cash_allocation INT NOT NULL DEFAULT 0,
		duration_months INT NOT NULL,
		early_withdrawal_penalty_bps BIGINT NOT NULL DEFAULT 0,
		is_automated_rebalancing BOOLEAN NOT NULL DEFAULT TRUE,
		is_tax_optimized BOOLEAN NOT NULL DEFAULT FALSE,
		allows_monthly_contribution BOOLEAN NOT NULL DEFAULT TRUE,
		allows_lump_sum BOOLEAN NOT NULL DEFAULT TRUE,
		management_fee_bps BIGINT NOT NULL DEFAULT 150,
		current_aum BIGINT NOT NULL DEFAULT 0,
		number_of_investors INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_investment_plans_catalog ON investment_plans(category, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_investment_plans_risk ON investment_plans(risk_level)`,

	`CREATE TABLE IF NOT EXISTS plan_portfolio_assets (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		plan_id UUID NOT NULL REFERENCES investment_plans(id) ON DELETE CASCADE,
		asset_type TEXT NOT NULL,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		allocation_bps BIGINT NOT NULL,
		current_price BIGINT NOT NULL,
		price_updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_assets_plan ON plan_portfolio_assets(plan_id, allocation_bps DESC)`,

	`CREATE TABLE IF NOT EXISTS plan_promotion_grants (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		plan_id UUID NOT NULL REFERENCES investment_plans(id) ON DELETE CASCADE,
		grant_type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		grant_amount BIGINT,
		grant_percentage_bps BIGINT,
		minimum_investment_required BIGINT NOT NULL,
		maximum_grant_per_user BIGINT,
		valid_from TIMESTAMPTZ NOT NULL,
		valid_until TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_plan_grants_plan ON plan_promotion_grants(plan_id, valid_from DESC)`,

	`CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		profile_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		plan_id UUID NOT NULL REFERENCES investment_plans(id) ON DELETE RESTRICT,
		initial_investment BIGINT NOT NULL,
		current_value BIGINT NOT NULL,
		total_contributed BIGINT NOT NULL DEFAULT 0,
		total_returns BIGINT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		start_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		planned_end_date TIMESTAMPTZ NOT NULL,
		actual_end_date TIMESTAMPTZ,
		monthly_contribution BIGINT,
		next_contribution_date TIMESTAMPTZ,
		roi_bps BIGINT NOT NULL DEFAULT 0,
		last_rebalance_at TIMESTAMPTZ,
		notes TEXT NOT NULL DEFAULT ''
	)`,
	// One live subscription per (profile, plan) pair, enforced at the storage
	// layer so concurrent subscribe requests cannot both win.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_live
		ON subscriptions(profile_id, plan_id)
		WHERE status IN ('active', 'paused')`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_profile ON subscriptions(profile_id, start_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_maturity ON subscriptions(planned_end_date) WHERE status IN ('active', 'paused')`,

	`CREATE TABLE IF NOT EXISTS contribution_schedules (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		subscription_id UUID NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		scheduled_date TIMESTAMPTZ NOT NULL,
		amount BIGINT NOT NULL,
		actual_date TIMESTAMPTZ,
		actual_amount BIGINT,
		status TEXT NOT NULL DEFAULT 'scheduled',
		notes TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contribution_schedules_sub ON contribution_schedules(subscription_id, scheduled_date)`,
	`CREATE INDEX IF NOT EXISTS idx_contribution_schedules_due ON contribution_schedules(scheduled_date) WHERE status = 'scheduled'`,
}

// Migrate applies the embedded schema statements in order.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
