package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"github.com/cenkalti/backoff/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrStatusNotYetAvailable is returned when the gateway still reports a
// delivery as pending after every polling attempt
var ErrStatusNotYetAvailable = errors.New("delivery status not yet available")

// PollPolicy bounds how long a status refresh keeps asking the gateway
type PollPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPollPolicy is used when no policy is configured
var DefaultPollPolicy = PollPolicy{
	MaxAttempts:     5,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// NotificationService handles per-recipient delivery records
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	router           *DeliveryRouter
	policy           PollPolicy
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	router *DeliveryRouter,
	policy PollPolicy,
	logger *zap.Logger,
) *NotificationService {
	if policy.MaxAttempts == 0 {
		policy = DefaultPollPolicy
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		router:           router,
		policy:           policy,
		logger:           logger,
	}
}

// ListByCampaign retrieves the delivery records of a campaign with pagination
func (s *NotificationService) ListByCampaign(ctx context.Context, campaignID int64, page, limit int) ([]*models.Notification, error) {
	return s.notificationRepo.FindByCampaignID(ctx, campaignID, page, limit)
}

// RefreshStatus asks the gateway that sent the notification for its delivery
// status, retrying with backoff while it is pending. Settled records are
// returned unchanged.
func (s *NotificationService) RefreshStatus(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.notificationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status != models.NotificationSent && n.Status != models.NotificationPending {
		return n, nil
	}

	gw, ok := s.router.Gateway(n.Gateway)
	if !ok {
		return nil, fmt.Errorf("gateway %q is not configured", n.Gateway)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.InitialInterval
	b.MaxInterval = s.policy.MaxInterval

	status, err := backoff.Retry(ctx, func() (string, error) {
		status, err := gw.GetDeliveryStatus(ctx, n.MessageID)
		if err != nil {
			return "", err
		}
		if status == pushgateway.StatusPending {
			return "", pushgateway.ErrStatusPending
		}
		return status, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.policy.MaxAttempts))
	if err != nil {
		if errors.Is(err, pushgateway.ErrStatusPending) {
			return nil, ErrStatusNotYetAvailable
		}
		return nil, fmt.Errorf("failed to get delivery status: %w", err)
	}

	now := time.Now()
	switch status {
	case pushgateway.StatusDelivered:
		n.Status = models.NotificationDelivered
		n.DeliveryDate = now
	case pushgateway.StatusFailed:
		n.Status = models.NotificationFailed
	default:
		s.logger.Warn("gateway returned unknown delivery status",
			zap.String("gateway", n.Gateway),
			zap.String("status", status),
		)
		return n, nil
	}
	n.UpdatedAt = now
	if err := s.notificationRepo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return n, nil
}
