/**
 * @description
 * This file contains the core business logic for investment subscriptions:
 * subscribing to a plan with promotion grants applied, one-off contributions,
 * pause/resume, the dashboard aggregation and the subscription detail view.
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

// SubscriptionRepository defines the database operations the investment
// service needs.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub *domain.Subscription, ledgerMessage string) (*domain.Subscription, error)
	FindLiveSubscription(ctx context.Context, profileID, planID uuid.UUID) (*domain.Subscription, error)
	GetSubscriptionForProfile(ctx context.Context, subscriptionID, profileID uuid.UUID) (*domain.Subscription, error)
	ListLiveSubscriptions(ctx context.Context, profileID uuid.UUID) ([]domain.Subscription, error)
	AddContribution(ctx context.Context, subscriptionID, profileID uuid.UUID, amount int64, ledgerMessage string) (*domain.Subscription, error)
	TransitionStatus(ctx context.Context, subscriptionID, profileID uuid.UUID, from, to string) (*domain.Subscription, error)
	RecentContributions(ctx context.Context, profileID uuid.UUID, limit int) ([]domain.ContributionSchedule, error)
	ListSubscriptionContributions(ctx context.Context, subscriptionID uuid.UUID) ([]domain.ContributionSchedule, error)
}

// InvestmentService provides the business logic for subscriptions.
type InvestmentService struct {
	subs     SubscriptionRepository
	plans    PlanRepository
	producer rabbitmq.Publisher
	exchange string
	logger   *slog.Logger
}

// NewInvestmentService creates a new investment service.
func NewInvestmentService(subs SubscriptionRepository, plans PlanRepository, producer rabbitmq.Publisher, exchange string, logger *slog.Logger) *InvestmentService {
	return &InvestmentService{subs: subs, plans: plans, producer: producer, exchange: exchange, logger: logger}
}

func (s *InvestmentService) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, s.exchange, routingKey, body); err != nil {
		s.logger.Warn("event publish failed", "routing_key", routingKey, "error", err)
	}
}

// Subscribe enrolls the caller in a plan, funded from their wallet. Promotion
// grants valid at subscription time are folded into the starting value.
// A second live subscription to the same plan is rejected with the existing
// subscription's id.
func (s *InvestmentService) Subscribe(ctx context.Context, profileID, planID uuid.UUID, req domain.SubscribeRequest) (*domain.Subscription, error) {
	plan, err := s.plans.GetPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, store.ErrPlanNotFound
	}
	if req.InitialInvestment < plan.MinimumInvestment {
		return nil, invalidf("initial_investment", "below the plan minimum of %d", plan.MinimumInvestment)
	}
	if plan.MaximumInvestment != nil && req.InitialInvestment > *plan.MaximumInvestment {
		return nil, invalidf("initial_investment", "above the plan maximum of %d", *plan.MaximumInvestment)
	}
	if req.MonthlyContribution != nil {
		if !plan.AllowsMonthlyContribution {
			return nil, invalidf("monthly_contribution", "this plan does not accept monthly contributions")
		}
		if *req.MonthlyContribution <= 0 {
			return nil, invalidf("monthly_contribution", "must be positive")
		}
	}

	now := time.Now().UTC()
	grants, err := s.plans.ListActiveGrants(ctx, planID, now)
	if err != nil {
		return nil, err
	}
	bonus := domain.TotalGrantBonus(grants, req.InitialInvestment, now)

	sub := &domain.Subscription{
		ProfileID:         profileID,
		PlanID:            planID,
		InitialInvestment: req.InitialInvestment,
		CurrentValue:      req.InitialInvestment + bonus,
		TotalContributed:  req.InitialInvestment + bonus,
		TotalReturns:      bonus,
		Status:            domain.SubscriptionActive,
		StartDate:         now,
		PlannedEndDate:    now.Add(time.Duration(plan.DurationMonths) * domain.ContributionInterval),
		Notes:             req.Notes,
	}
	if req.MonthlyContribution != nil {
		next := now.Add(domain.ContributionInterval)
		sub.MonthlyContribution = req.MonthlyContribution
		sub.NextContributionDate = &next
	}
	sub.CalculateROI()

	created, err := s.subs.CreateSubscription(ctx, sub, "Investment in "+plan.Name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateSubscription) {
			existing, findErr := s.subs.FindLiveSubscription(ctx, profileID, planID)
			if findErr != nil {
				return nil, err
			}
			return nil, &DuplicateSubscriptionError{ExistingID: existing.ID}
		}
		return nil, err
	}

	s.logger.Info("subscription created",
		"subscription_id", created.ID, "plan_id", planID, "profile_id", profileID,
		"initial_investment", created.InitialInvestment, "grant_bonus", bonus)
	s.publish(ctx, domain.EventSubscriptionCreated, domain.SubscriptionEvent{
		SubscriptionID: created.ID,
		ProfileID:      profileID,
		PlanID:         planID,
		Amount:         created.InitialInvestment,
		GrantBonus:     bonus,
		Status:         created.Status,
		Timestamp:      now,
	})
	return created, nil
}

// Contribute records a one-off wallet-funded contribution on an active
// subscription.
func (s *InvestmentService) Contribute(ctx context.Context, profileID, subscriptionID uuid.UUID, amount int64) (*domain.Subscription, error) {
	if amount <= 0 {
		return nil, invalidf("amount", "must be positive")
	}
	updated, err := s.subs.AddContribution(ctx, subscriptionID, profileID, amount, "Contribution to investment")
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventContributionRecorded, domain.ContributionEvent{
		SubscriptionID: subscriptionID,
		ProfileID:      profileID,
		Amount:         amount,
		Source:         "manual",
		Timestamp:      time.Now().UTC(),
	})
	return updated, nil
}

// Pause moves an active subscription to paused.
func (s *InvestmentService) Pause(ctx context.Context, profileID, subscriptionID uuid.UUID) (*domain.Subscription, error) {
	updated, err := s.subs.TransitionStatus(ctx, subscriptionID, profileID, domain.SubscriptionActive, domain.SubscriptionPaused)
	if err != nil {
		return nil, err
	}
	s.logger.Info("subscription paused", "subscription_id", subscriptionID, "profile_id", profileID)
	s.publish(ctx, domain.EventSubscriptionPaused, domain.SubscriptionEvent{
		SubscriptionID: updated.ID,
		ProfileID:      profileID,
		PlanID:         updated.PlanID,
		Status:         updated.Status,
		Timestamp:      time.Now().UTC(),
	})
	return updated, nil
}

// Resume moves a paused subscription back to active. Numeric fields are left
// untouched.
func (s *InvestmentService) Resume(ctx context.Context, profileID, subscriptionID uuid.UUID) (*domain.Subscription, error) {
	updated, err := s.subs.TransitionStatus(ctx, subscriptionID, profileID, domain.SubscriptionPaused, domain.SubscriptionActive)
	if err != nil {
		return nil, err
	}
	s.logger.Info("subscription resumed", "subscription_id", subscriptionID, "profile_id", profileID)
	s.publish(ctx, domain.EventSubscriptionResumed, domain.SubscriptionEvent{
		SubscriptionID: updated.ID,
		ProfileID:      profileID,
		PlanID:         updated.PlanID,
		Status:         updated.Status,
		Timestamp:      time.Now().UTC(),
	})
	return updated, nil
}

// GetDashboard aggregates the caller's live subscriptions with their most
// recent contributions. ROI is recomputed from the stored values on read.
func (s *InvestmentService) GetDashboard(ctx context.Context, profileID uuid.UUID) (*domain.DashboardSummary, error) {
	subs, err := s.subs.ListLiveSubscriptions(ctx, profileID)
	if err != nil {
		return nil, err
	}
	recent, err := s.subs.RecentContributions(ctx, profileID, 10)
	if err != nil {
		return nil, err
	}

	summary := &domain.DashboardSummary{
		Subscriptions:       subs,
		SubscriptionCount:   len(subs),
		RecentContributions: recent,
	}
	for i := range subs {
		subs[i].CalculateROI()
		summary.TotalInvested += subs[i].TotalContributed
		summary.CurrentValue += subs[i].CurrentValue
		if subs[i].MonthlyContribution != nil && subs[i].Status == domain.SubscriptionActive {
			summary.MonthlyContributions += *subs[i].MonthlyContribution
		}
	}
	summary.TotalGain = summary.CurrentValue - summary.TotalInvested
	if summary.TotalInvested > 0 {
		summary.OverallROIPercent = float64(summary.TotalGain) * 100 / float64(summary.TotalInvested)
	}
	return summary, nil
}

// GetSubscriptionDetail returns one subscription with its plan, the plan's
// active holdings, the asset-class split and the contribution history.
func (s *InvestmentService) GetSubscriptionDetail(ctx context.Context, profileID, subscriptionID uuid.UUID) (*domain.SubscriptionDetail, error) {
	sub, err := s.subs.GetSubscriptionForProfile(ctx, subscriptionID, profileID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetPlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	assets, err := s.plans.ListPlanAssets(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	contributions, err := s.subs.ListSubscriptionContributions(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	sub.CalculateROI()
	return &domain.SubscriptionDetail{
		Subscription:    *sub,
		Plan:            *plan,
		PortfolioAssets: assets,
		AssetAllocation: plan.AssetAllocation(),
		Contributions:   contributions,
		ROIPercent:      sub.ROIPercent(),
		RemainingDays:   sub.DurationRemaining(time.Now().UTC()),
	}, nil
}
