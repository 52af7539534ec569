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

// subRepoStub implements SubscriptionRepository with overridable funcs.
type subRepoStub struct {
	createFn            func(ctx context.Context, sub *domain.Subscription, ledgerMessage string) (*domain.Subscription, error)
	findLiveFn          func(ctx context.Context, profileID, planID uuid.UUID) (*domain.Subscription, error)
	getForProfileFn     func(ctx context.Context, subscriptionID, profileID uuid.UUID) (*domain.Subscription, error)
	listLiveFn          func(ctx context.Context, profileID uuid.UUID) ([]domain.Subscription, error)
	addContributionFn   func(ctx context.Context, subscriptionID, profileID uuid.UUID, amount int64, ledgerMessage string) (*domain.Subscription, error)
	transitionFn        func(ctx context.Context, subscriptionID, profileID uuid.UUID, from, to string) (*domain.Subscription, error)
	recentFn            func(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.ContributionSchedule, error)
	listContributionsFn func(ctx context.Context, subscriptionID uuid.UUID) ([]domain.ContributionSchedule, error)
}

func (s *subRepoStub) CreateSubscription(ctx context.Context, sub *domain.Subscription, ledgerMessage string) (*domain.Subscription, error) {
	return s.createFn(ctx, sub, ledgerMessage)
}

func (s *subRepoStub) FindLiveSubscription(ctx context.Context, profileID, planID uuid.UUID) (*domain.Subscription, error) {
	return s.findLiveFn(ctx, profileID, planID)
}

func (s *subRepoStub) GetSubscriptionForProfile(ctx context.Context, subscriptionID, profileID uuid.UUID) (*domain.Subscription, error) {
	return s.getForProfileFn(ctx, subscriptionID, profileID)
}

func (s *subRepoStub) ListLiveSubscriptions(ctx context.Context, profileID uuid.UUID) ([]domain.Subscription, error) {
	return s.listLiveFn(ctx, profileID)
}

func (s *subRepoStub) AddContribution(ctx context.Context, subscriptionID, profileID uuid.UUID, amount int64, ledgerMessage string) (*domain.Subscription, error) {
	return s.addContributionFn(ctx, subscriptionID, profileID, amount, ledgerMessage)
}

func (s *subRepoStub) TransitionStatus(ctx context.Context, subscriptionID, profileID uuid.UUID, from, to string) (*domain.Subscription, error) {
	return s.transitionFn(ctx, subscriptionID, profileID, from, to)
}

func (s *subRepoStub) RecentContributions(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.ContributionSchedule, error) {
	return s.recentFn(ctx, profileID, limit)
}

func (s *subRepoStub) ListSubscriptionContributions(ctx context.Context, subscriptionID uuid.UUID) ([]domain.ContributionSchedule, error) {
	return s.listContributionsFn(ctx, subscriptionID)
}

// publisherStub records every published event.
type publisherStub struct {
	published []publishedEvent
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

func (p *publisherStub) Publish(_ context.Context, exchange, routingKey string, body interface{}) error {
	p.published = append(p.published, publishedEvent{exchange, routingKey, body})
	return nil
}

func (p *publisherStub) Close() {}

func newInvestmentService(subs *subRepoStub, plans *planRepoStub) (*InvestmentService, *publisherStub) {
	producer := &publisherStub{}
	return NewInvestmentService(subs, plans, producer, "events", testLogger()), producer
}

func TestSubscribe_RejectsBelowMinimumBeforeWriting(t *testing.T) {
	plan := validTestPlan()
	plans := &planRepoStub{
		getPlanFn: func(_ context.Context, _ uuid.UUID) (*domain.InvestmentPlan, error) {
			return plan, nil
		},
	}
	subs := &subRepoStub{
		createFn: func(_ context.Context, _ *domain.Subscription, _ string) (*domain.Subscription, error) {
			t.Fatal("CreateSubscription must not be called for an invalid amount")
			return nil, nil
		},
	}
	svc, _ := newInvestmentService(subs, plans)

	_, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID, domain.SubscribeRequest{
		InitialInvestment: plan.MinimumInvestment - 1,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestSubscribe_InactivePlanNotFound(t *testing.T) {
	plan := validTestPlan()
	plan.IsActive = false
	plans := &planRepoStub{
		getPlanFn: func(_ context.Context, _ uuid.UUID) (*domain.InvestmentPlan, error) {
			return plan, nil
		},
	}
	svc, _ := newInvestmentService(&subRepoStub{}, plans)

	_, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID, domain.SubscribeRequest{
		InitialInvestment: plan.MinimumInvestment,
	})
	if !errors.Is(err, store.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestSubscribe_GrantBonusFoldedIntoStartingValue(t *testing.T) {
	plan := validTestPlan()
	now := time.Now().UTC()
	pct := int64(500)
	cap := int64(50000)
	plans := &planRepoStub{
		getPlanFn: func(_ context.Context, _ uuid.UUID) (*domain.InvestmentPlan, error) {
			return plan, nil
		},
		listActiveGrantsFn: func(_ context.Context, _ uuid.UUID, _ time.Time) ([]domain.PromotionGrant, error) {
			return []domain.PromotionGrant{{
				GrantType:           domain.GrantTypeWelcomeBonus,
				Name:                "welcome",
				GrantPercentageBps:  &pct,
				MaximumGrantPerUser: &cap,
				ValidFrom:           now.Add(-time.Hour),
				ValidUntil:          now.Add(time.Hour),
				IsActive:            true,
			}}, nil
		},
	}

	var captured *domain.Subscription
	subs := &subRepoStub{
		createFn: func(_ context.Context, sub *domain.Subscription, ledgerMessage string) (*domain.Subscription, error) {
			captured = sub
			if ledgerMessage != "Investment in "+plan.Name {
				t.Fatalf("unexpected ledger message %q", ledgerMessage)
			}
			created := *sub
			created.ID = uuid.New()
			return &created, nil
		},
	}
	svc, producer := newInvestmentService(subs, plans)

	// $100 with a 5% welcome bonus starts at $105.
	created, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID, domain.SubscribeRequest{
		InitialInvestment: 10000,
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if captured.CurrentValue != 10500 || captured.TotalContributed != 10500 {
		t.Fatalf("expected a starting value of 10500, got value=%d contributed=%d",
			captured.CurrentValue, captured.TotalContributed)
	}
	if captured.TotalReturns != 500 {
		t.Fatalf("expected the bonus recorded as returns, got %d", captured.TotalReturns)
	}
	if captured.ROIBps != 500 {
		t.Fatalf("expected 500 bps starting ROI, got %d", captured.ROIBps)
	}
	if created.Status != domain.SubscriptionActive {
		t.Fatalf("expected an active subscription, got %q", created.Status)
	}

	if len(producer.published) != 1 || producer.published[0].routingKey != domain.EventSubscriptionCreated {
		t.Fatalf("expected one %s event, got %+v", domain.EventSubscriptionCreated, producer.published)
	}
}

func TestSubscribe_DuplicateCarriesExistingID(t *testing.T) {
	plan := validTestPlan()
	existingID := uuid.New()
	plans := &planRepoStub{
		getPlanFn: func(_ context.Context, _ uuid.UUID) (*domain.InvestmentPlan, error) {
			return plan, nil
		},
		listActiveGrantsFn: func(_ context.Context, _ uuid.UUID, _ time.Time) ([]domain.PromotionGrant, error) {
			return nil, nil
		},
	}
	subs := &subRepoStub{
		createFn: func(_ context.Context, _ *domain.Subscription, _ string) (*domain.Subscription, error) {
			return nil, store.ErrDuplicateSubscription
		},
		findLiveFn: func(_ context.Context, _, _ uuid.UUID) (*domain.Subscription, error) {
			return &domain.Subscription{ID: existingID}, nil
		},
	}
	svc, _ := newInvestmentService(subs, plans)

	_, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID, domain.SubscribeRequest{
		InitialInvestment: plan.MinimumInvestment,
	})
	var dup *DuplicateSubscriptionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected a duplicate subscription error, got %v", err)
	}
	if dup.ExistingID != existingID {
		t.Fatalf("expected the existing subscription id %s, got %s", existingID, dup.ExistingID)
	}
}

func TestSubscribe_MonthlyContributionRules(t *testing.T) {
	plan := validTestPlan()
	plan.AllowsMonthlyContribution = false
	plans := &planRepoStub{
		getPlanFn: func(_ context.Context, _ uuid.UUID) (*domain.InvestmentPlan, error) {
			return plan, nil
		},
	}
	svc, _ := newInvestmentService(&subRepoStub{}, plans)

	monthly := int64(5000)
	_, err := svc.Subscribe(context.Background(), uuid.New(), plan.ID, domain.SubscribeRequest{
		InitialInvestment:   plan.MinimumInvestment,
		MonthlyContribution: &monthly,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected rejection when the plan disallows monthly contributions, got %v", err)
	}

	plan.AllowsMonthlyContribution = true
	zero := int64(0)
	_, err = svc.Subscribe(context.Background(), uuid.New(), plan.ID, domain.SubscribeRequest{
		InitialInvestment:   plan.MinimumInvestment,
		MonthlyContribution: &zero,
	})
	if !errors.As(err, &verr) {
		t.Fatalf("expected rejection of a non-positive monthly contribution, got %v", err)
	}
}

func TestContribute_RejectsNonPositiveAmount(t *testing.T) {
	svc, producer := newInvestmentService(&subRepoStub{}, &planRepoStub{})

	for _, amount := range []int64{0, -100} {
		_, err := svc.Contribute(context.Background(), uuid.New(), uuid.New(), amount)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected a validation error for amount %d, got %v", amount, err)
		}
	}
	if len(producer.published) != 0 {
		t.Fatalf("expected no events, got %d", len(producer.published))
	}
}

func TestContribute_PublishesManualEvent(t *testing.T) {
	subs := &subRepoStub{
		addContributionFn: func(_ context.Context, subscriptionID, _ uuid.UUID, amount int64, _ string) (*domain.Subscription, error) {
			return &domain.Subscription{ID: subscriptionID, CurrentValue: amount}, nil
		},
	}
	svc, producer := newInvestmentService(subs, &planRepoStub{})

	if _, err := svc.Contribute(context.Background(), uuid.New(), uuid.New(), 5000); err != nil {
		t.Fatalf("Contribute failed: %v", err)
	}
	if len(producer.published) != 1 {
		t.Fatalf("expected one event, got %d", len(producer.published))
	}
	event, ok := producer.published[0].body.(domain.ContributionEvent)
	if !ok {
		t.Fatalf("unexpected event body %T", producer.published[0].body)
	}
	if event.Source != "manual" || event.Amount != 5000 {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestPauseAndResume_TransitionDirections(t *testing.T) {
	var gotFrom, gotTo string
	subs := &subRepoStub{
		transitionFn: func(_ context.Context, subscriptionID, _ uuid.UUID, from, to string) (*domain.Subscription, error) {
			gotFrom, gotTo = from, to
			return &domain.Subscription{ID: subscriptionID, Status: to}, nil
		},
	}
	svc, producer := newInvestmentService(subs, &planRepoStub{})

	if _, err := svc.Pause(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if gotFrom != domain.SubscriptionActive || gotTo != domain.SubscriptionPaused {
		t.Fatalf("unexpected pause transition %s -> %s", gotFrom, gotTo)
	}

	if _, err := svc.Resume(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if gotFrom != domain.SubscriptionPaused || gotTo != domain.SubscriptionActive {
		t.Fatalf("unexpected resume transition %s -> %s", gotFrom, gotTo)
	}

	if len(producer.published) != 2 {
		t.Fatalf("expected two lifecycle events, got %d", len(producer.published))
	}
}

func TestPause_InvalidStatusPassesThrough(t *testing.T) {
	subs := &subRepoStub{
		transitionFn: func(_ context.Context, _, _ uuid.UUID, _, _ string) (*domain.Subscription, error) {
			return nil, store.ErrInvalidStatus
		},
	}
	svc, producer := newInvestmentService(subs, &planRepoStub{})

	_, err := svc.Pause(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, store.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(producer.published) != 0 {
		t.Fatal("no event should be published on a failed transition")
	}
}

func TestGetDashboard_Aggregation(t *testing.T) {
	monthly := int64(5000)
	subs := &subRepoStub{
		listLiveFn: func(_ context.Context, _ uuid.UUID) ([]domain.Subscription, error) {
			return []domain.Subscription{
				{
					InitialInvestment: 100000, TotalContributed: 100000, CurrentValue: 110000,
					Status: domain.SubscriptionActive, MonthlyContribution: &monthly,
				},
				{
					InitialInvestment: 50000, TotalContributed: 50000, CurrentValue: 45000,
					Status: domain.SubscriptionPaused, MonthlyContribution: &monthly,
				},
			}, nil
		},
		recentFn: func(_ context.Context, _ uuid.UUID, limit int) ([]domain.ContributionSchedule, error) {
			if limit != 10 {
				t.Fatalf("expected a limit of 10 recent contributions, got %d", limit)
			}
			return []domain.ContributionSchedule{{Amount: 5000, Status: domain.ContributionCompleted}}, nil
		},
	}
	svc, _ := newInvestmentService(subs, &planRepoStub{})

	summary, err := svc.GetDashboard(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if summary.SubscriptionCount != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", summary.SubscriptionCount)
	}
	if summary.TotalInvested != 150000 || summary.CurrentValue != 155000 || summary.TotalGain != 5000 {
		t.Fatalf("unexpected totals: invested=%d value=%d gain=%d",
			summary.TotalInvested, summary.CurrentValue, summary.TotalGain)
	}
	// Paused subscriptions do not count toward the monthly commitment.
	if summary.MonthlyContributions != 5000 {
		t.Fatalf("expected 5000 monthly contributions, got %d", summary.MonthlyContributions)
	}
	want := float64(5000) * 100 / float64(150000)
	if summary.OverallROIPercent != want {
		t.Fatalf("expected overall ROI %v, got %v", want, summary.OverallROIPercent)
	}
	if len(summary.RecentContributions) != 1 {
		t.Fatalf("expected the recent contributions to pass through, got %d", len(summary.RecentContributions))
	}
}

func TestGetDashboard_EmptyPortfolio(t *testing.T) {
	subs := &subRepoStub{
		listLiveFn: func(_ context.Context, _ uuid.UUID) ([]domain.Subscription, error) {
			return nil, nil
		},
		recentFn: func(_ context.Context, _ uuid.UUID, _ int) ([]domain.ContributionSchedule, error) {
			return nil, nil
		},
	}
	svc, _ := newInvestmentService(subs, &planRepoStub{})

	summary, err := svc.GetDashboard(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if summary.OverallROIPercent != 0 {
		t.Fatalf("expected zero ROI with nothing invested, got %v", summary.OverallROIPercent)
	}
}

func TestGetSubscriptionDetail(t *testing.T) {
	plan := validTestPlan()
	subscriptionID := uuid.New()
	subs := &subRepoStub{
		getForProfileFn: func(_ context.Context, id, _ uuid.UUID) (*domain.Subscription, error) {
			return &domain.Subscription{
				ID: id, PlanID: plan.ID,
				InitialInvestment: 100000, CurrentValue: 112500,
				Status:         domain.SubscriptionActive,
				PlannedEndDate: time.Now().UTC().Add(100 * 24 * time.Hour),
			}, nil
		},
		listContributionsFn: func(_ context.Context, _ uuid.UUID) ([]domain.ContributionSchedule, error) {
			return []domain.ContributionSchedule{{Status: domain.ContributionScheduled}}, nil
		},
	}
	plans := &planRepoStub{
		getPlanFn: func(_ context.Context, _ uuid.UUID) (*domain.InvestmentPlan, error) {
			return plan, nil
		},
		listAssetsFn: func(_ context.Context, _ uuid.UUID) ([]domain.PlanPortfolioAsset, error) {
			return []domain.PlanPortfolioAsset{{Symbol: "SPY"}}, nil
		},
	}
	svc, _ := newInvestmentService(subs, plans)

	detail, err := svc.GetSubscriptionDetail(context.Background(), uuid.New(), subscriptionID)
	if err != nil {
		t.Fatalf("GetSubscriptionDetail failed: %v", err)
	}
	if detail.ROIPercent != 12.5 {
		t.Fatalf("expected a 12.5%% ROI, got %v", detail.ROIPercent)
	}
	if detail.AssetAllocation["stocks"] != plan.StocksAllocation {
		t.Fatalf("unexpected asset allocation %v", detail.AssetAllocation)
	}
	if detail.RemainingDays == 0 {
		t.Fatal("expected remaining days for an active subscription")
	}
	if len(detail.PortfolioAssets) != 1 || len(detail.Contributions) != 1 {
		t.Fatalf("expected holdings and contributions to pass through: %+v", detail)
	}
}
