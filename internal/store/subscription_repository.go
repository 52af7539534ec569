/**
 * @description
 * This file provides the PostgreSQL repository for subscriptions and their
 * contribution schedules. Every mutation that moves money runs inside a single
 * transaction with `SELECT ... FOR UPDATE` row locks on the wallet, the
 * subscription and the plan, so concurrent requests serialize at the database.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
)

const subscriptionColumns = `
	id, profile_id, plan_id,
	initial_investment, current_value, total_contributed, total_returns,
	status, start_date, planned_end_date, actual_end_date,
	monthly_contribution, next_contribution_date,
	roi_bps, last_rebalance_at, notes`

const scheduleColumns = `
	id, subscription_id, scheduled_date, amount,
	actual_date, actual_amount, status, notes`

// SubscriptionRepository is the PostgreSQL-backed store for subscriptions.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

// NewSubscriptionRepository creates a new instance of SubscriptionRepository.
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.ProfileID, &s.PlanID,
		&s.InitialInvestment, &s.CurrentValue, &s.TotalContributed, &s.TotalReturns,
		&s.Status, &s.StartDate, &s.PlannedEndDate, &s.ActualEndDate,
		&s.MonthlyContribution, &s.NextContributionDate,
		&s.ROIBps, &s.LastRebalanceAt, &s.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSchedule(row pgx.Row) (*domain.ContributionSchedule, error) {
	var c domain.ContributionSchedule
	err := row.Scan(
		&c.ID, &c.SubscriptionID, &c.ScheduledDate, &c.Amount,
		&c.ActualDate, &c.ActualAmount, &c.Status, &c.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// lockWallet loads a wallet by profile id under FOR UPDATE inside an open transaction.
func lockWallet(ctx context.Context, tx pgx.Tx, profileID uuid.UUID) (walletID uuid.UUID, balance int64, err error) {
	err = tx.QueryRow(ctx,
		`SELECT id, balance FROM wallets WHERE profile_id = $1 FOR UPDATE`,
		profileID,
	).Scan(&walletID, &balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, 0, ErrWalletNotFound
		}
		return uuid.Nil, 0, err
	}
	return walletID, balance, nil
}

// debitWallet moves funds out of a locked wallet and writes the ledger entry.
func debitWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount int64, message string) error {
	_, err := tx.Exec(ctx,
		`UPDATE wallets SET balance = balance - $2, amount_invested = amount_invested + $2, updated_at = NOW() WHERE id = $1`,
		walletID, amount,
	)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO wallet_transactions (wallet_id, amount, direction, status, reference, message)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		walletID, amount, domain.DirectionDebit, domain.TxnStatusCredit, domain.NewTransactionReference(), message,
	)
	return err
}

// CreateSubscription funds a new subscription from the caller's wallet in one
// transaction: wallet debit, subscription insert, plan AUM and investor-count
// increments, and the first monthly schedule row when a contribution is set.
// The grant bonus is already folded into the subscription's value fields by the
// caller; only the initial investment leaves the wallet.
func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, sub *domain.Subscription, ledgerMessage string) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	walletID, balance, err := lockWallet(ctx, tx, sub.ProfileID)
	if err != nil {
		return nil, err
	}
	if balance < sub.InitialInvestment {
		return nil, ErrInsufficientFunds
	}
	if err := debitWallet(ctx, tx, walletID, sub.InitialInvestment, ledgerMessage); err != nil {
		return nil, err
	}

	created, err := scanSubscription(tx.QueryRow(ctx,
		`INSERT INTO subscriptions (
			profile_id, plan_id,
			initial_investment, current_value, total_contributed, total_returns,
			status, start_date, planned_end_date,
			monthly_contribution, next_contribution_date, roi_bps, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+subscriptionColumns,
		sub.ProfileID, sub.PlanID,
		sub.InitialInvestment, sub.CurrentValue, sub.TotalContributed, sub.TotalReturns,
		sub.Status, sub.StartDate, sub.PlannedEndDate,
		sub.MonthlyContribution, sub.NextContributionDate, sub.ROIBps, sub.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSubscription
		}
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE investment_plans
		 SET current_aum = current_aum + $2, number_of_investors = number_of_investors + 1, updated_at = NOW()
		 WHERE id = $1`,
		sub.PlanID, sub.InitialInvestment,
	)
	if err != nil {
		return nil, err
	}

	if created.MonthlyContribution != nil && created.NextContributionDate != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO contribution_schedules (subscription_id, scheduled_date, amount, status)
			 VALUES ($1, $2, $3, $4)`,
			created.ID, *created.NextContributionDate, *created.MonthlyContribution, domain.ContributionScheduled,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// FindLiveSubscription returns the caller's active or paused subscription on a
// plan, if any. The partial unique index guarantees at most one exists.
func (r *SubscriptionRepository) FindLiveSubscription(ctx context.Context, profileID, planID uuid.UUID) (*domain.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE profile_id = $1 AND plan_id = $2 AND status = ANY($3)`,
		profileID, planID, domain.LiveSubscriptionStatuses,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetSubscriptionForProfile retrieves a subscription scoped to its owner.
// A foreign id resolves to not-found, never to someone else's record.
func (r *SubscriptionRepository) GetSubscriptionForProfile(ctx context.Context, subscriptionID, profileID uuid.UUID) (*domain.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 AND profile_id = $2`,
		subscriptionID, profileID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return s, nil
}

// ListLiveSubscriptions returns the caller's active and paused subscriptions,
// newest first.
func (r *SubscriptionRepository) ListLiveSubscriptions(ctx context.Context, profileID uuid.UUID) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE profile_id = $1 AND status = ANY($2)
		 ORDER BY start_date DESC`,
		profileID, domain.LiveSubscriptionStatuses,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

// AddContribution records a one-off wallet-funded contribution on an active
// subscription. The subscription row is locked first so its status check and
// value update cannot race the scheduler.
func (r *SubscriptionRepository) AddContribution(ctx context.Context, subscriptionID, profileID uuid.UUID, amount int64, ledgerMessage string) (*domain.Subscription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := scanSubscription(tx.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 AND profile_id = $2 FOR UPDATE`,
		subscriptionID, profileID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if current.Status != domain.SubscriptionActive {
		return nil, ErrInvalidStatus
	}

	walletID, balance, err := lockWallet(ctx, tx, profileID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientFunds
	}
	if err := debitWallet(ctx, tx, walletID, amount, ledgerMessage); err != nil {
		return nil, err
	}

	newValue := current.CurrentValue + amount
	roi := int64(0)
	if current.InitialInvestment > 0 {
		roi = (newValue - current.InitialInvestment) * 10000 / current.InitialInvestment
	}

	updated, err := scanSubscription(tx.QueryRow(ctx,
		`UPDATE subscriptions
		 SET total_contributed = total_contributed + $2,
		     current_value = current_value + $2,
		     roi_bps = $3
		 WHERE id = $1
		 RETURNING `+subscriptionColumns,
		subscriptionID, amount, roi,
	))
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE investment_plans SET current_aum = current_aum + $2, updated_at = NOW() WHERE id = $1`,
		current.PlanID, amount,
	)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO contribution_schedules (subscription_id, scheduled_date, amount, actual_date, actual_amount, status, notes)
		 VALUES ($1, $2, $3, $2, $3, $4, $5)`,
		subscriptionID, now, amount, domain.ContributionCompleted, "manual contribution",
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// TransitionStatus moves a subscription between two states with a guarded
// update. Zero rows affected means either the subscription does not exist for
// this profile or it is not in the expected source state.
func (r *SubscriptionRepository) TransitionStatus(ctx context.Context, subscriptionID, profileID uuid.UUID, from, to string) (*domain.Subscription, error) {
	updated, err := scanSubscription(r.db.QueryRow(ctx,
		`UPDATE subscriptions SET status = $4
		 WHERE id = $1 AND profile_id = $2 AND status = $3
		 RETURNING `+subscriptionColumns,
		subscriptionID, profileID, from, to,
	))
	if err == nil {
		return updated, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// Guarded update missed; distinguish a missing row from a wrong state.
	var status string
	err = r.db.QueryRow(ctx,
		`SELECT status FROM subscriptions WHERE id = $1 AND profile_id = $2`,
		subscriptionID, profileID,
	).Scan(&status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return nil, ErrInvalidStatus
}

// CompleteMaturedSubscriptions flips every live subscription past its planned
// end date to completed and returns the affected rows for event publishing.
func (r *SubscriptionRepository) CompleteMaturedSubscriptions(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE subscriptions
		 SET status = $2, actual_end_date = $1
		 WHERE status = ANY($3) AND planned_end_date <= $1
		 RETURNING `+subscriptionColumns,
		now, domain.SubscriptionCompleted, domain.LiveSubscriptionStatuses,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := []domain.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		completed = append(completed, *s)
	}
	return completed, rows.Err()
}

// RecentContributions returns the caller's most recent contribution schedule
// rows across all of their subscriptions.
func (r *SubscriptionRepository) RecentContributions(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.ContributionSchedule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT cs.id, cs.subscription_id, cs.scheduled_date, cs.amount,
		        cs.actual_date, cs.actual_amount, cs.status, cs.notes
		 FROM contribution_schedules cs
		 JOIN subscriptions s ON s.id = cs.subscription_id
		 WHERE s.profile_id = $1
		 ORDER BY cs.scheduled_date DESC
		 LIMIT $2`,
		profileID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []domain.ContributionSchedule{}
	for rows.Next() {
		c, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *c)
	}
	return schedules, rows.Err()
}

// ListSubscriptionContributions returns the schedule history of one subscription.
func (r *SubscriptionRepository) ListSubscriptionContributions(ctx context.Context, subscriptionID uuid.UUID) ([]domain.ContributionSchedule, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+scheduleColumns+`
		 FROM contribution_schedules
		 WHERE subscription_id = $1
		 ORDER BY scheduled_date DESC`,
		subscriptionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := []domain.ContributionSchedule{}
	for rows.Next() {
		c, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *c)
	}
	return schedules, rows.Err()
}

// DueContribution is a schedule row joined with the owning subscription,
// as consumed by the scheduler's contribution job.
type DueContribution struct {
	ScheduleID     uuid.UUID
	SubscriptionID uuid.UUID
	ProfileID      uuid.UUID
	PlanID         uuid.UUID
	ScheduledDate  time.Time
	Amount         int64
}

// ListDueContributions returns scheduled rows whose date has passed, oldest first.
func (r *SubscriptionRepository) ListDueContributions(ctx context.Context, now time.Time, limit int) ([]DueContribution, error) {
	rows, err := r.db.Query(ctx,
		`SELECT cs.id, cs.subscription_id, s.profile_id, s.plan_id, cs.scheduled_date, cs.amount
		 FROM contribution_schedules cs
		 JOIN subscriptions s ON s.id = cs.subscription_id
		 WHERE cs.status = $1 AND cs.scheduled_date <= $2
		 ORDER BY cs.scheduled_date ASC
		 LIMIT $3`,
		domain.ContributionScheduled, now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	due := []DueContribution{}
	for rows.Next() {
		var d DueContribution
		if err := rows.Scan(&d.ScheduleID, &d.SubscriptionID, &d.ProfileID, &d.PlanID, &d.ScheduledDate, &d.Amount); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// SettleScheduledContribution processes one due schedule row end to end and
// returns it in its final state: completed when the wallet covered the amount,
// failed when it did not, skipped when the subscription is no longer active.
// On success the next month's row is created and the subscription's
// next-contribution date advances.
func (r *SubscriptionRepository) SettleScheduledContribution(ctx context.Context, scheduleID uuid.UUID, now time.Time) (*domain.ContributionSchedule, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	schedule, err := scanSchedule(tx.QueryRow(ctx,
		`SELECT `+scheduleColumns+`
		 FROM contribution_schedules
		 WHERE id = $1 AND status = $2
		 FOR UPDATE`,
		scheduleID, domain.ContributionScheduled,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Already settled by a concurrent run.
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	sub, err := scanSubscription(tx.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE`,
		schedule.SubscriptionID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	finish := func(status, notes string, withActual bool) (*domain.ContributionSchedule, error) {
		var settled *domain.ContributionSchedule
		var err error
		if withActual {
			settled, err = scanSchedule(tx.QueryRow(ctx,
				`UPDATE contribution_schedules
				 SET status = $2, actual_date = $3, actual_amount = amount, notes = $4
				 WHERE id = $1
				 RETURNING `+scheduleColumns,
				scheduleID, status, now, notes,
			))
		} else {
			settled, err = scanSchedule(tx.QueryRow(ctx,
				`UPDATE contribution_schedules
				 SET status = $2, notes = $3
				 WHERE id = $1
				 RETURNING `+scheduleColumns,
				scheduleID, status, notes,
			))
		}
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return settled, nil
	}

	if sub.Status != domain.SubscriptionActive {
		return finish(domain.ContributionSkipped, "subscription not active", false)
	}

	walletID, balance, err := lockWallet(ctx, tx, sub.ProfileID)
	if err != nil {
		return nil, err
	}
	if balance < schedule.Amount {
		return finish(domain.ContributionFailed, "insufficient wallet balance", false)
	}

	if err := debitWallet(ctx, tx, walletID, schedule.Amount, "scheduled monthly contribution"); err != nil {
		return nil, err
	}

	newValue := sub.CurrentValue + schedule.Amount
	roi := int64(0)
	if sub.InitialInvestment > 0 {
		roi = (newValue - sub.InitialInvestment) * 10000 / sub.InitialInvestment
	}
	next := schedule.ScheduledDate.Add(domain.ContributionInterval)

	_, err = tx.Exec(ctx,
		`UPDATE subscriptions
		 SET total_contributed = total_contributed + $2,
		     current_value = current_value + $2,
		     roi_bps = $3,
		     next_contribution_date = $4
		 WHERE id = $1`,
		sub.ID, schedule.Amount, roi, next,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE investment_plans SET current_aum = current_aum + $2, updated_at = NOW() WHERE id = $1`,
		sub.PlanID, schedule.Amount,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO contribution_schedules (subscription_id, scheduled_date, amount, status)
		 VALUES ($1, $2, $3, $4)`,
		sub.ID, next, schedule.Amount, domain.ContributionScheduled,
	)
	if err != nil {
		return nil, err
	}

	return finish(domain.ContributionCompleted, "", true)
}
