package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
)

// jobsSubRepoStub implements JobsSubscriptionRepository.
type jobsSubRepoStub struct {
	completeMaturedFn func(ctx context.Context, now time.Time) ([]domain.Subscription, error)
	listDueFn         func(ctx context.Context, now time.Time, limit int) ([]store.DueContribution, error)
	settleFn          func(ctx context.Context, scheduleID uuid.UUID, now time.Time) (*domain.ContributionSchedule, error)
}

func (s *jobsSubRepoStub) CompleteMaturedSubscriptions(ctx context.Context, now time.Time) ([]domain.Subscription, error) {
	return s.completeMaturedFn(ctx, now)
}

func (s *jobsSubRepoStub) ListDueContributions(ctx context.Context, now time.Time, limit int) ([]store.DueContribution, error) {
	return s.listDueFn(ctx, now, limit)
}

func (s *jobsSubRepoStub) SettleScheduledContribution(ctx context.Context, scheduleID uuid.UUID, now time.Time) (*domain.ContributionSchedule, error) {
	return s.settleFn(ctx, scheduleID, now)
}

// jobsAccountRepoStub implements JobsAccountRepository.
type jobsAccountRepoStub struct {
	expireFn func(ctx context.Context, cutoff time.Time) (int, error)
}

func (s *jobsAccountRepoStub) ExpirePendingDeposits(ctx context.Context, cutoff time.Time) (int, error) {
	return s.expireFn(ctx, cutoff)
}

func newTestJobs(subs *jobsSubRepoStub, accounts *jobsAccountRepoStub) (*Jobs, *publisherStub) {
	producer := &publisherStub{}
	return NewJobs(subs, accounts, producer, "events", testLogger()), producer
}

func dueRow(status string) (store.DueContribution, *domain.ContributionSchedule) {
	scheduleID := uuid.New()
	due := store.DueContribution{
		ScheduleID:     scheduleID,
		SubscriptionID: uuid.New(),
		ProfileID:      uuid.New(),
		PlanID:         uuid.New(),
		ScheduledDate:  time.Now().UTC().Add(-time.Hour),
		Amount:         5000,
	}
	settled := &domain.ContributionSchedule{ID: scheduleID, Amount: 5000, Status: status}
	return due, settled
}

func TestProcessDueContributions_Stats(t *testing.T) {
	completed, completedRow := dueRow(domain.ContributionCompleted)
	failed, failedRow := dueRow(domain.ContributionFailed)
	skipped, skippedRow := dueRow(domain.ContributionSkipped)
	outcomes := map[uuid.UUID]*domain.ContributionSchedule{
		completed.ScheduleID: completedRow,
		failed.ScheduleID:    failedRow,
		skipped.ScheduleID:   skippedRow,
	}

	var listed bool
	subs := &jobsSubRepoStub{
		listDueFn: func(_ context.Context, _ time.Time, _ int) ([]store.DueContribution, error) {
			if listed {
				return nil, nil
			}
			listed = true
			return []store.DueContribution{completed, failed, skipped}, nil
		},
		settleFn: func(_ context.Context, scheduleID uuid.UUID, _ time.Time) (*domain.ContributionSchedule, error) {
			return outcomes[scheduleID], nil
		},
	}
	jobs, producer := newTestJobs(subs, &jobsAccountRepoStub{})

	stats, err := jobs.ProcessDueContributions(context.Background())
	if err != nil {
		t.Fatalf("ProcessDueContributions failed: %v", err)
	}
	if stats.Completed != 1 || stats.Failed != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	// Only the completed settlement publishes an event.
	if len(producer.published) != 1 {
		t.Fatalf("expected one event, got %d", len(producer.published))
	}
	event, ok := producer.published[0].body.(domain.ContributionEvent)
	if !ok {
		t.Fatalf("unexpected event body %T", producer.published[0].body)
	}
	if event.Source != "scheduled" || event.SubscriptionID != completed.SubscriptionID {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestProcessDueContributions_SkipsConcurrentlySettledRows(t *testing.T) {
	due, _ := dueRow(domain.ContributionCompleted)
	var listed bool
	subs := &jobsSubRepoStub{
		listDueFn: func(_ context.Context, _ time.Time, _ int) ([]store.DueContribution, error) {
			if listed {
				return nil, nil
			}
			listed = true
			return []store.DueContribution{due}, nil
		},
		settleFn: func(_ context.Context, _ uuid.UUID, _ time.Time) (*domain.ContributionSchedule, error) {
			return nil, store.ErrScheduleNotFound
		},
	}
	jobs, producer := newTestJobs(subs, &jobsAccountRepoStub{})

	stats, err := jobs.ProcessDueContributions(context.Background())
	if err != nil {
		t.Fatalf("expected the run to continue past a concurrently settled row, got %v", err)
	}
	if stats != (ContributionRunStats{}) {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
	if len(producer.published) != 0 {
		t.Fatal("no event expected for a concurrently settled row")
	}
}

func TestProcessDueContributions_StopsOnSettlementError(t *testing.T) {
	due, _ := dueRow(domain.ContributionCompleted)
	boom := errors.New("connection lost")
	subs := &jobsSubRepoStub{
		listDueFn: func(_ context.Context, _ time.Time, _ int) ([]store.DueContribution, error) {
			return []store.DueContribution{due}, nil
		},
		settleFn: func(_ context.Context, _ uuid.UUID, _ time.Time) (*domain.ContributionSchedule, error) {
			return nil, boom
		},
	}
	jobs, _ := newTestJobs(subs, &jobsAccountRepoStub{})

	if _, err := jobs.ProcessDueContributions(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected the settlement error to propagate, got %v", err)
	}
}

func TestCompleteMaturedSubscriptions_PublishesEachCompletion(t *testing.T) {
	matured := []domain.Subscription{
		{ID: uuid.New(), ProfileID: uuid.New(), PlanID: uuid.New(), Status: domain.SubscriptionCompleted},
		{ID: uuid.New(), ProfileID: uuid.New(), PlanID: uuid.New(), Status: domain.SubscriptionCompleted},
	}
	subs := &jobsSubRepoStub{
		completeMaturedFn: func(_ context.Context, _ time.Time) ([]domain.Subscription, error) {
			return matured, nil
		},
	}
	jobs, producer := newTestJobs(subs, &jobsAccountRepoStub{})

	count, err := jobs.CompleteMaturedSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("CompleteMaturedSubscriptions failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 completions, got %d", count)
	}
	if len(producer.published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(producer.published))
	}
	for i, p := range producer.published {
		if p.routingKey != domain.EventSubscriptionCompleted {
			t.Fatalf("unexpected routing key %q", p.routingKey)
		}
		event, ok := p.body.(domain.SubscriptionEvent)
		if !ok {
			t.Fatalf("unexpected event body %T", p.body)
		}
		if event.SubscriptionID != matured[i].ID {
			t.Fatalf("event %d carries subscription %s, want %s", i, event.SubscriptionID, matured[i].ID)
		}
	}
}

func TestExpireStaleDeposits_CutoffFromMaxAge(t *testing.T) {
	maxAge := 48 * time.Hour
	accounts := &jobsAccountRepoStub{
		expireFn: func(_ context.Context, cutoff time.Time) (int, error) {
			age := time.Since(cutoff)
			if age < maxAge-time.Minute || age > maxAge+time.Minute {
				t.Fatalf("expected a cutoff ~%v old, got %v", maxAge, age)
			}
			return 3, nil
		},
	}
	jobs, _ := newTestJobs(&jobsSubRepoStub{}, accounts)

	expired, err := jobs.ExpireStaleDeposits(context.Background(), maxAge)
	if err != nil {
		t.Fatalf("ExpireStaleDeposits failed: %v", err)
	}
	if expired != 3 {
		t.Fatalf("expected 3 expired deposits, got %d", expired)
	}
}
