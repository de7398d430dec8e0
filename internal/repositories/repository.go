package repositories

import (
	"context"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository provides the notification population
type UserRepository interface {
	// FindActive returns every active user in ascending id order
	FindActive(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Count(ctx context.Context) (int64, error)
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	// Create assigns the next numeric id to the campaign and stores it
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id int64) (*models.Campaign, error)
	FindAll(ctx context.Context, status models.CampaignStatus, page, limit int) ([]*models.Campaign, error)
	// FindDue returns SCHEDULED campaigns whose scheduled time is at or before now
	FindDue(ctx context.Context, now time.Time) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id int64) error
}

// NotificationRepository defines the interface for delivery record operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	FindByCampaignID(ctx context.Context, campaignID int64, page, limit int) ([]*models.Notification, error)
	Update(ctx context.Context, notification *models.Notification) error
}

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Reservation, error)
	Update(ctx context.Context, reservation *models.Reservation) error
}

// SystemSettingsRepository defines the interface for system settings operations
type SystemSettingsRepository interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateReprogrammingRules(ctx context.Context, rules []models.RuleConfig, updatedBy string) error
	UpdatePushGateway(ctx context.Context, gateway string, updatedBy string) error
}
