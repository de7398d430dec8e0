package services

import (
	"context"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignManager defines the campaign lifecycle operations exposed to handlers
type CampaignManager interface {
	// Create stores a new DRAFT campaign after validating the input
	Create(ctx context.Context, actor string, in *models.CampaignInput) (*models.Campaign, error)

	// Get retrieves a campaign by its ID
	Get(ctx context.Context, id int64) (*models.Campaign, error)

	// List retrieves campaigns, optionally filtered by status
	List(ctx context.Context, status models.CampaignStatus, page, limit int) ([]*models.Campaign, error)

	// Update replaces the content and targeting of a DRAFT or SCHEDULED campaign
	Update(ctx context.Context, id int64, in *models.CampaignInput) (*models.Campaign, error)

	// Schedule moves a DRAFT campaign with a future send time to SCHEDULED
	Schedule(ctx context.Context, id int64) (*models.Campaign, error)

	// Activate resolves the audience and sends the campaign
	Activate(ctx context.Context, id int64, force bool) (*ActivationResult, error)

	// Cancel stops a campaign that has not finished
	Cancel(ctx context.Context, id int64) (*models.Campaign, error)

	// Delete removes a DRAFT campaign
	Delete(ctx context.Context, id int64) error

	// PreviewAudience resolves the audience without sending anything
	PreviewAudience(ctx context.Context, id int64) (*Resolution, error)

	// RecordDelivery applies one recipient's delivery outcome. Failures are logged, never returned.
	RecordDelivery(ctx context.Context, id int64, outcome models.DeliveryOutcome)

	// RecordRead counts one read receipt. Failures are logged, never returned.
	RecordRead(ctx context.Context, id int64)
}

// ReservationManager defines the reservation reprogramming operations
type ReservationManager interface {
	Get(ctx context.Context, id int64) (*models.Reservation, error)

	// Evaluate checks a proposed start date against the configured rules without changing anything
	Evaluate(ctx context.Context, id int64, proposedStart time.Time) (models.Verdict, error)

	// Reprogram moves the reservation when the rules allow it
	Reprogram(ctx context.Context, actor string, id int64, proposedStart time.Time, reason string) (*models.Reservation, models.Verdict, error)
}

// NotificationManager defines operations on per-recipient delivery records
type NotificationManager interface {
	ListByCampaign(ctx context.Context, campaignID int64, page, limit int) ([]*models.Notification, error)

	// RefreshStatus polls the gateway that sent the notification for its delivery status
	RefreshStatus(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
}

// SystemSettingsService defines the interface for system settings operations
type SystemSettingsService interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateReprogrammingRules(ctx context.Context, rules []models.RuleConfig, updatedBy string) (*models.SystemSettings, error)
	UpdatePushGateway(ctx context.Context, gateway string, updatedBy string) (*models.SystemSettings, error)
}

// Dispatcher sends one campaign message to one recipient
type Dispatcher interface {
	Dispatch(ctx context.Context, campaignID int64, recipient models.Recipient, title, body string) (DispatchReceipt, error)
}

// DispatchReceipt identifies a message accepted by a gateway
type DispatchReceipt struct {
	Gateway   string
	MessageID string
}

var (
	_ CampaignManager       = (*CampaignService)(nil)
	_ ReservationManager    = (*ReservationService)(nil)
	_ NotificationManager   = (*NotificationService)(nil)
	_ SystemSettingsService = (*SystemSettingsServiceImpl)(nil)
	_ Dispatcher            = (*DeliveryRouter)(nil)
)
