package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/metrics"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.uber.org/zap"
)

// Activator starts a campaign; implemented by CampaignService
type Activator interface {
	Activate(ctx context.Context, id int64, force bool) (*ActivationResult, error)
}

// SweepReport summarises one scheduler pass
type SweepReport struct {
	Due       int `json:"due"`
	Activated int `json:"activated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Scheduler promotes SCHEDULED campaigns whose time has come
type Scheduler struct {
	campaigns repositories.CampaignRepository
	activator Activator
	logger    *zap.Logger
}

// NewScheduler creates a new Scheduler
func NewScheduler(campaigns repositories.CampaignRepository, activator Activator, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		campaigns: campaigns,
		activator: activator,
		logger:    logger,
	}
}

// PromoteDue activates every campaign due at now. A failing campaign is logged
// and counted; it does not stop the sweep.
func (s *Scheduler) PromoteDue(ctx context.Context, now time.Time) (SweepReport, error) {
	due, err := s.campaigns.FindDue(ctx, now)
	if err != nil {
		return SweepReport{}, fmt.Errorf("failed to list due campaigns: %w", err)
	}

	report := SweepReport{Due: len(due)}
	for _, c := range due {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		_, err := s.activator.Activate(ctx, c.ID, false)
		var stateErr *models.InvalidStateError
		switch {
		case err == nil:
			report.Activated++
			metrics.SchedulerPromotions.WithLabelValues("activated").Inc()
		case errors.As(err, &stateErr):
			// another instance or an operator got there first
			report.Skipped++
			metrics.SchedulerPromotions.WithLabelValues("skipped").Inc()
			s.logger.Debug("scheduled campaign no longer activatable",
				zap.Int64("campaign_id", c.ID),
				zap.Error(err),
			)
		default:
			report.Failed++
			metrics.SchedulerPromotions.WithLabelValues("failed").Inc()
			s.logger.Error("failed to activate scheduled campaign",
				zap.Int64("campaign_id", c.ID),
				zap.Error(err),
			)
		}
	}
	return report, nil
}

// Run sweeps every interval until ctx is done
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report, err := s.PromoteDue(ctx, time.Now())
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("scheduler sweep failed", zap.Error(err))
		} else if report.Due > 0 {
			s.logger.Info("scheduler sweep finished",
				zap.Int("due", report.Due),
				zap.Int("activated", report.Activated),
				zap.Int("skipped", report.Skipped),
				zap.Int("failed", report.Failed),
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
