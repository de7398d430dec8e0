package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"github.com/ArowuTest/tourbook-backend/pkg/lock"
	"go.uber.org/zap"
)

// ReservationService handles reservation reprogramming
type ReservationService struct {
	reservations repositories.ReservationRepository
	settings     repositories.SystemSettingsRepository
	engine       *RuleEngine
	locker       lock.Locker
	logger       *zap.Logger
	location     *time.Location
	now          func() time.Time
}

// NewReservationService creates a new ReservationService. Blackout dates are
// interpreted in location.
func NewReservationService(
	reservations repositories.ReservationRepository,
	settings repositories.SystemSettingsRepository,
	engine *RuleEngine,
	locker lock.Locker,
	location *time.Location,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		settings:     settings,
		engine:       engine,
		locker:       locker,
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// Get retrieves a reservation by its ID
func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.reservations.FindByID(ctx, id)
}

// Evaluate reports whether the reservation could move to proposedStart
func (s *ReservationService) Evaluate(ctx context.Context, id int64, proposedStart time.Time) (models.Verdict, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return models.Verdict{}, err
	}
	return s.evaluate(ctx, res, proposedStart)
}

func (s *ReservationService) evaluate(ctx context.Context, res *models.Reservation, proposedStart time.Time) (models.Verdict, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to get system settings: %w", err)
	}
	return s.engine.Evaluate(res, proposedStart, settings.ReprogrammingRules, EvaluationConfig{
		Now:      s.now(),
		Location: s.location,
	}), nil
}

// Reprogram moves the reservation to proposedStart keeping its duration. A
// denied verdict is returned without error and leaves the reservation unchanged.
func (s *ReservationService) Reprogram(ctx context.Context, actor string, id int64, proposedStart time.Time, reason string) (*models.Reservation, models.Verdict, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, models.Verdict{}, &models.ValidationError{Fields: map[string]string{"reason": "is required"}}
	}

	unlock, err := s.locker.Lock(ctx, fmt.Sprintf("reservation:%d", id))
	if err != nil {
		return nil, models.Verdict{}, fmt.Errorf("failed to lock reservation %d: %w", id, err)
	}
	defer unlock()

	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, models.Verdict{}, err
	}
	verdict, err := s.evaluate(ctx, res, proposedStart)
	if err != nil {
		return nil, models.Verdict{}, err
	}
	if !verdict.Allowed {
		s.logger.Info("reprogramming denied",
			zap.Int64("reservation_id", id),
			zap.String("reason", verdict.Reason),
		)
		return res, verdict, nil
	}

	now := s.now()
	newEnd := res.EndAt.Add(proposedStart.Sub(res.StartAt))
	res.History = append(res.History, models.ReprogrammingRecord{
		FromStart:   res.StartAt,
		FromEnd:     res.EndAt,
		ToStart:     proposedStart,
		ToEnd:       newEnd,
		Reason:      reason,
		RequestedBy: actor,
		At:          now,
	})
	res.StartAt = proposedStart
	res.EndAt = newEnd
	res.ReprogrammingCount++
	res.ReprogrammingReason = reason
	res.UpdatedAt = now
	if err := s.reservations.Update(ctx, res); err != nil {
		return nil, models.Verdict{}, fmt.Errorf("failed to update reservation: %w", err)
	}
	s.logger.Info("reservation reprogrammed",
		zap.Int64("reservation_id", id),
		zap.Int("count", res.ReprogrammingCount),
		zap.String("requested_by", actor),
	)
	return res, verdict, nil
}
