/**
 * @description
 * Cron scheduler setup for the background jobs.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.ContributionJobSchedule, s.runContributions); err != nil {
		s.logger.Error("failed to schedule contribution job", "error", err)
	} else {
		s.logger.Info("scheduled contribution job", "schedule", s.config.ContributionJobSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.MaturityJobSchedule, s.runMaturitySweep); err != nil {
		s.logger.Error("failed to schedule maturity sweep job", "error", err)
	} else {
		s.logger.Info("scheduled maturity sweep job", "schedule", s.config.MaturityJobSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.DepositExpiryJobSchedule, s.runDepositExpiry); err != nil {
		s.logger.Error("failed to schedule deposit expiry job", "error", err)
	} else {
		s.logger.Info("scheduled deposit expiry job", "schedule", s.config.DepositExpiryJobSchedule)
	}

	s.cron.Start()
}

// Stop stops the cron scheduler and returns a context that is done once all
// running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runContributions() {
	if _, err := s.jobs.ProcessDueContributions(context.Background()); err != nil {
		s.logger.Error("contribution job failed", "error", err)
	}
}

func (s *Scheduler) runMaturitySweep() {
	if _, err := s.jobs.CompleteMaturedSubscriptions(context.Background()); err != nil {
		s.logger.Error("maturity sweep job failed", "error", err)
	}
}

func (s *Scheduler) runDepositExpiry() {
	maxAge := time.Duration(s.config.DepositExpiryHours) * time.Hour
	if _, err := s.jobs.ExpireStaleDeposits(context.Background(), maxAge); err != nil {
		s.logger.Error("deposit expiry job failed", "error", err)
	}
}
