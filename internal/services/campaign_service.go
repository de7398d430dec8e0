package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/metrics"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"github.com/ArowuTest/tourbook-backend/pkg/lock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultDispatchConcurrency = 8

// ActivationResult summarises an activation once every recipient has been attempted
type ActivationResult struct {
	Campaign   *models.Campaign `json:"campaign"`
	Recipients int              `json:"recipients"`
	Dropped    int              `json:"dropped"`
}

// CampaignService handles campaign lifecycle business logic
type CampaignService struct {
	campaigns     repositories.CampaignRepository
	notifications repositories.NotificationRepository
	resolver      *AudienceResolver
	dispatcher    Dispatcher
	locker        lock.Locker
	logger        *zap.Logger
	now           func() time.Time
	concurrency   int
}

// CampaignOption customises a CampaignService
type CampaignOption func(*CampaignService)

// WithClock overrides the time source
func WithClock(now func() time.Time) CampaignOption {
	return func(s *CampaignService) { s.now = now }
}

// WithDispatchConcurrency bounds how many recipients are dispatched at once
func WithDispatchConcurrency(n int) CampaignOption {
	return func(s *CampaignService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(
	campaigns repositories.CampaignRepository,
	notifications repositories.NotificationRepository,
	resolver *AudienceResolver,
	dispatcher Dispatcher,
	locker lock.Locker,
	logger *zap.Logger,
	opts ...CampaignOption,
) *CampaignService {
	s := &CampaignService{
		campaigns:     campaigns,
		notifications: notifications,
		resolver:      resolver,
		dispatcher:    dispatcher,
		locker:        locker,
		logger:        logger,
		now:           time.Now,
		concurrency:   defaultDispatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func campaignKey(id int64) string {
	return fmt.Sprintf("campaign:%d", id)
}

// Create stores a new DRAFT campaign
func (s *CampaignService) Create(ctx context.Context, actor string, in *models.CampaignInput) (*models.Campaign, error) {
	now := s.now()
	if err := ValidateCampaignInput(in, now); err != nil {
		return nil, err
	}

	c := &models.Campaign{
		Status:    models.CampaignStatusDraft,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(c, in)

	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	metrics.CampaignTransitions.WithLabelValues(string(models.CampaignStatusDraft)).Inc()
	s.logger.Info("campaign created",
		zap.Int64("campaign_id", c.ID),
		zap.String("audience", string(c.Audience)),
		zap.String("created_by", actor),
	)
	return c, nil
}

// Get retrieves a campaign by its ID
func (s *CampaignService) Get(ctx context.Context, id int64) (*models.Campaign, error) {
	return s.campaigns.FindByID(ctx, id)
}

// List retrieves campaigns with pagination
func (s *CampaignService) List(ctx context.Context, status models.CampaignStatus, page, limit int) ([]*models.Campaign, error) {
	return s.campaigns.FindAll(ctx, status, page, limit)
}

// Update replaces the editable fields of a DRAFT or SCHEDULED campaign. A
// SCHEDULED campaign switched to send immediately goes back to DRAFT.
func (s *CampaignService) Update(ctx context.Context, id int64, in *models.CampaignInput) (*models.Campaign, error) {
	var out *models.Campaign
	err := s.withCampaign(ctx, id, func(c *models.Campaign) error {
		if !c.Status.IsEditable() {
			return &models.InvalidStateError{Action: "update", Status: c.Status}
		}
		now := s.now()
		if err := ValidateCampaignInput(in, now); err != nil {
			return err
		}
		applyInput(c, in)
		if c.Status == models.CampaignStatusScheduled && c.SendImmediately {
			c.Status = models.CampaignStatusDraft
			metrics.CampaignTransitions.WithLabelValues(string(models.CampaignStatusDraft)).Inc()
		}
		c.UpdatedAt = now
		if err := s.campaigns.Update(ctx, c); err != nil {
			return fmt.Errorf("failed to update campaign: %w", err)
		}
		out = c
		return nil
	})
	return out, err
}

// Schedule moves a DRAFT campaign to SCHEDULED
func (s *CampaignService) Schedule(ctx context.Context, id int64) (*models.Campaign, error) {
	var out *models.Campaign
	err := s.withCampaign(ctx, id, func(c *models.Campaign) error {
		if c.Status != models.CampaignStatusDraft {
			return &models.InvalidStateError{Action: "schedule", Status: c.Status}
		}
		now := s.now()
		switch {
		case c.SendImmediately:
			return &models.ValidationError{Fields: map[string]string{
				"sendImmediately": "campaign is set to send immediately; activate it instead",
			}}
		case c.ScheduledAt == nil || !c.ScheduledAt.After(now):
			return &models.ValidationError{Fields: map[string]string{
				"scheduledAt": "must be in the future",
			}}
		}
		c.Status = models.CampaignStatusScheduled
		c.UpdatedAt = now
		if err := s.campaigns.Update(ctx, c); err != nil {
			return fmt.Errorf("failed to schedule campaign: %w", err)
		}
		metrics.CampaignTransitions.WithLabelValues(string(c.Status)).Inc()
		s.logger.Info("campaign scheduled", zap.Int64("campaign_id", id), zap.Timep("scheduled_at", c.ScheduledAt))
		out = c
		return nil
	})
	return out, err
}

// Activate resolves the audience and dispatches the campaign to every
// recipient. It returns after every recipient has been attempted. Unless
// force is set, a SCHEDULED campaign whose time is still ahead is rejected.
func (s *CampaignService) Activate(ctx context.Context, id int64, force bool) (*ActivationResult, error) {
	c, resolution, err := s.beginActivation(ctx, id, force)
	if err != nil {
		return nil, err
	}

	// dispatch and the final reload outlive the caller
	ctx = context.WithoutCancel(ctx)
	s.dispatchAll(ctx, c, resolution.Recipients)

	final, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ActivationResult{
		Campaign:   final,
		Recipients: len(resolution.Recipients),
		Dropped:    resolution.Dropped,
	}, nil
}

// beginActivation performs the RUNNING transition under the campaign lock so
// that concurrent activations cannot both succeed
func (s *CampaignService) beginActivation(ctx context.Context, id int64, force bool) (*models.Campaign, *Resolution, error) {
	var (
		out        *models.Campaign
		resolution *Resolution
	)
	err := s.withCampaign(ctx, id, func(c *models.Campaign) error {
		if c.Status != models.CampaignStatusDraft && c.Status != models.CampaignStatusScheduled {
			return &models.InvalidStateError{Action: "activate", Status: c.Status}
		}
		now := s.now()
		if !force && c.Status == models.CampaignStatusScheduled && c.ScheduledAt != nil && c.ScheduledAt.After(now) {
			return &models.InvalidStateError{
				Action: "activate",
				Status: c.Status,
				Detail: "scheduled time has not been reached; force activation to send now",
			}
		}

		res, err := s.resolver.Resolve(ctx, c)
		if err != nil {
			return err
		}
		if len(res.Recipients) == 0 {
			return &models.EmptyAudienceError{CampaignID: c.ID, Audience: c.Audience, Dropped: res.Dropped}
		}

		c.Status = models.CampaignStatusRunning
		c.TotalRecipients = len(res.Recipients)
		c.TotalSent = 0
		c.TotalErrors = 0
		c.TotalRead = 0
		c.SentAt = &now
		c.UpdatedAt = now
		if err := s.campaigns.Update(ctx, c); err != nil {
			return fmt.Errorf("failed to activate campaign: %w", err)
		}
		metrics.CampaignTransitions.WithLabelValues(string(c.Status)).Inc()
		s.logger.Info("campaign activated",
			zap.Int64("campaign_id", id),
			zap.Int("recipients", c.TotalRecipients),
			zap.Int("dropped", res.Dropped),
			zap.Bool("forced", force),
		)
		out, resolution = c, res
		return nil
	})
	return out, resolution, err
}

func (s *CampaignService) dispatchAll(ctx context.Context, c *models.Campaign, recipients []models.Recipient) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, r := range recipients {
		g.Go(func() error {
			s.dispatchOne(ctx, c, r)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *CampaignService) dispatchOne(ctx context.Context, c *models.Campaign, r models.Recipient) {
	if s.cancelled(ctx, c.ID) {
		return
	}

	receipt, err := s.dispatcher.Dispatch(ctx, c.ID, r, c.Title, c.Body)
	now := s.now()
	n := &models.Notification{
		CampaignID: c.ID,
		UserID:     r.ID,
		Gateway:    receipt.Gateway,
		MessageID:  receipt.MessageID,
		SentDate:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	outcome := models.DeliverySuccess
	if err != nil {
		outcome = models.DeliveryFailure
		n.Status = models.NotificationFailed
		n.Error = err.Error()
		s.logger.Debug("dispatch failed",
			zap.Int64("campaign_id", c.ID),
			zap.Int64("user_id", r.ID),
			zap.Error(err),
		)
	} else {
		n.Status = models.NotificationSent
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn("failed to store notification record",
			zap.Int64("campaign_id", c.ID),
			zap.Int64("user_id", r.ID),
			zap.Error(err),
		)
	}
	s.RecordDelivery(ctx, c.ID, outcome)
}

// cancelled reports whether the campaign was cancelled while dispatch was in progress
func (s *CampaignService) cancelled(ctx context.Context, id int64) bool {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("failed to reload campaign during dispatch", zap.Int64("campaign_id", id), zap.Error(err))
		return false
	}
	return c.Status == models.CampaignStatusCancelled
}

// Cancel stops a campaign in any non-terminal state
func (s *CampaignService) Cancel(ctx context.Context, id int64) (*models.Campaign, error) {
	var out *models.Campaign
	err := s.withCampaign(ctx, id, func(c *models.Campaign) error {
		if c.Status.IsTerminal() {
			return &models.InvalidStateError{Action: "cancel", Status: c.Status}
		}
		now := s.now()
		c.Status = models.CampaignStatusCancelled
		c.CancelledAt = &now
		c.UpdatedAt = now
		if err := s.campaigns.Update(ctx, c); err != nil {
			return fmt.Errorf("failed to cancel campaign: %w", err)
		}
		metrics.CampaignTransitions.WithLabelValues(string(c.Status)).Inc()
		s.logger.Info("campaign cancelled", zap.Int64("campaign_id", id), zap.Int("processed", c.Processed()))
		out = c
		return nil
	})
	return out, err
}

// Delete removes a DRAFT campaign
func (s *CampaignService) Delete(ctx context.Context, id int64) error {
	return s.withCampaign(ctx, id, func(c *models.Campaign) error {
		if c.Status != models.CampaignStatusDraft {
			return &models.InvalidStateError{Action: "delete", Status: c.Status}
		}
		if err := s.campaigns.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete campaign: %w", err)
		}
		s.logger.Info("campaign deleted", zap.Int64("campaign_id", id))
		return nil
	})
}

// PreviewAudience resolves the campaign's audience against the current population
func (s *CampaignService) PreviewAudience(ctx context.Context, id int64) (*Resolution, error) {
	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, c)
}

// RecordDelivery applies one delivery outcome. A RUNNING campaign whose every
// recipient has an outcome becomes COMPLETED. Outcomes beyond the number of
// recipients are dropped.
func (s *CampaignService) RecordDelivery(ctx context.Context, id int64, outcome models.DeliveryOutcome) {
	err := s.withCampaign(ctx, id, func(c *models.Campaign) error {
		if outcome != models.DeliverySuccess && outcome != models.DeliveryFailure {
			return errDropped("invalid_outcome")
		}
		if c.Processed() >= c.TotalRecipients {
			return errDropped("exhausted")
		}
		if outcome == models.DeliverySuccess {
			c.TotalSent++
		} else {
			c.TotalErrors++
		}
		now := s.now()
		completed := false
		if c.Status == models.CampaignStatusRunning && c.Processed() == c.TotalRecipients {
			c.Status = models.CampaignStatusCompleted
			c.CompletedAt = &now
			completed = true
		}
		c.UpdatedAt = now
		if err := s.campaigns.Update(ctx, c); err != nil {
			return err
		}
		metrics.DeliveryOutcomes.WithLabelValues(string(outcome)).Inc()
		if completed {
			metrics.CampaignTransitions.WithLabelValues(string(c.Status)).Inc()
			s.logger.Info("campaign completed",
				zap.Int64("campaign_id", id),
				zap.Int("sent", c.TotalSent),
				zap.Int("errors", c.TotalErrors),
			)
		}
		return nil
	})
	if err != nil {
		s.dropCallback("delivery", id, err)
	}
}

// RecordRead counts one read receipt regardless of the campaign state
func (s *CampaignService) RecordRead(ctx context.Context, id int64) {
	err := s.withCampaign(ctx, id, func(c *models.Campaign) error {
		c.TotalRead++
		c.UpdatedAt = s.now()
		return s.campaigns.Update(ctx, c)
	})
	if err != nil {
		s.dropCallback("read", id, err)
	}
}

// withCampaign loads the campaign under its lock and runs fn on it
func (s *CampaignService) withCampaign(ctx context.Context, id int64, fn func(*models.Campaign) error) error {
	unlock, err := s.locker.Lock(ctx, campaignKey(id))
	if err != nil {
		return fmt.Errorf("failed to lock campaign %d: %w", id, err)
	}
	defer unlock()

	c, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return fn(c)
}

type droppedError struct {
	reason string
}

func errDropped(reason string) error { return &droppedError{reason: reason} }

func (e *droppedError) Error() string { return "callback dropped: " + e.reason }

func (s *CampaignService) dropCallback(kind string, id int64, err error) {
	reason := "error"
	var dropped *droppedError
	switch {
	case errors.As(err, &dropped):
		reason = dropped.reason
	case errors.Is(err, models.ErrCampaignNotFound):
		reason = "not_found"
	case errors.Is(err, lock.ErrNotAcquired), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = "lock"
	}
	metrics.DroppedCallbacks.WithLabelValues(kind, reason).Inc()
	s.logger.Warn("campaign callback dropped",
		zap.String("kind", kind),
		zap.Int64("campaign_id", id),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
