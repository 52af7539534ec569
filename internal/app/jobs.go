/**
 * @description
 * Background jobs run by the scheduler binary: settling due monthly
 * contributions, completing matured subscriptions and expiring stale pending
 * deposits. Each job is context-aware and logs a summary of what it touched.
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
	"github.com/TempBiGmIkE/Creypinvest-master/pkg/rabbitmq"
)

const dueContributionBatchSize = 100

// JobsSubscriptionRepository defines the store operations the jobs need on
// subscriptions and their contribution schedules.
type JobsSubscriptionRepository interface {
	CompleteMaturedSubscriptions(ctx context.Context, now time.Time) ([]domain.Subscription, error)
	ListDueContributions(ctx context.Context, now time.Time, limit int) ([]store.DueContribution, error)
	SettleScheduledContribution(ctx context.Context, scheduleID uuid.UUID, now time.Time) (*domain.ContributionSchedule, error)
}

// JobsAccountRepository defines the store operations the jobs need on wallets.
type JobsAccountRepository interface {
	ExpirePendingDeposits(ctx context.Context, cutoff time.Time) (int, error)
}

// Jobs bundles the scheduled maintenance work.
type Jobs struct {
	subs     JobsSubscriptionRepository
	accounts JobsAccountRepository
	producer rabbitmq.Publisher
	exchange string
	logger   *slog.Logger
}

// NewJobs creates the scheduled jobs runner.
func NewJobs(subs JobsSubscriptionRepository, accounts JobsAccountRepository, producer rabbitmq.Publisher, exchange string, logger *slog.Logger) *Jobs {
	return &Jobs{subs: subs, accounts: accounts, producer: producer, exchange: exchange, logger: logger}
}

func (j *Jobs) publish(ctx context.Context, routingKey string, body interface{}) {
	if j.producer == nil {
		return
	}
	if err := j.producer.Publish(ctx, j.exchange, routingKey, body); err != nil {
		j.logger.Warn("event publish failed", "routing_key", routingKey, "error", err)
	}
}

// ContributionRunStats summarizes one contribution-processing run.
type ContributionRunStats struct {
	Completed int
	Failed    int
	Skipped   int
}

// ProcessDueContributions settles every schedule row whose date has passed,
// in batches. Rows whose wallets cannot cover the amount are marked failed and
// the run continues.
func (j *Jobs) ProcessDueContributions(ctx context.Context) (ContributionRunStats, error) {
	var stats ContributionRunStats
	now := time.Now().UTC()

	for {
		due, err := j.subs.ListDueContributions(ctx, now, dueContributionBatchSize)
		if err != nil {
			return stats, err
		}
		if len(due) == 0 {
			break
		}

		for _, d := range due {
			settled, err := j.subs.SettleScheduledContribution(ctx, d.ScheduleID, now)
			if err != nil {
				if errors.Is(err, store.ErrScheduleNotFound) {
					// Settled by a concurrent run between listing and locking.
					continue
				}
				j.logger.Error("contribution settlement failed",
					"schedule_id", d.ScheduleID, "subscription_id", d.SubscriptionID, "error", err)
				return stats, err
			}

			switch settled.Status {
			case domain.ContributionCompleted:
				stats.Completed++
				j.publish(ctx, domain.EventContributionRecorded, domain.ContributionEvent{
					SubscriptionID: d.SubscriptionID,
					ProfileID:      d.ProfileID,
					Amount:         d.Amount,
					Source:         "scheduled",
					Timestamp:      now,
				})
			case domain.ContributionFailed:
				stats.Failed++
			case domain.ContributionSkipped:
				stats.Skipped++
			}
		}

		if len(due) < dueContributionBatchSize {
			break
		}
	}

	j.logger.Info("contribution run finished",
		"completed", stats.Completed, "failed", stats.Failed, "skipped", stats.Skipped)
	return stats, nil
}

// CompleteMaturedSubscriptions flips live subscriptions past their planned end
// date to completed and publishes an event for each.
func (j *Jobs) CompleteMaturedSubscriptions(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	completed, err := j.subs.CompleteMaturedSubscriptions(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, sub := range completed {
		j.publish(ctx, domain.EventSubscriptionCompleted, domain.SubscriptionEvent{
			SubscriptionID: sub.ID,
			ProfileID:      sub.ProfileID,
			PlanID:         sub.PlanID,
			Status:         sub.Status,
			Timestamp:      now,
		})
	}
	if len(completed) > 0 {
		j.logger.Info("matured subscriptions completed", "count", len(completed))
	}
	return len(completed), nil
}

// ExpireStaleDeposits fails pending deposits older than the given age.
func (j *Jobs) ExpireStaleDeposits(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	expired, err := j.accounts.ExpirePendingDeposits(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		j.logger.Info("stale deposits expired", "count", expired)
	}
	return expired, nil
}
