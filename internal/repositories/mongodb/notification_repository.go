package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository implements the repositories.NotificationRepository interface
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// FindByID finds a notification by ID
func (r *NotificationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// FindByCampaignID finds notifications by campaign ID with pagination
func (r *NotificationRepository) FindByCampaignID(ctx context.Context, campaignID int64, page, limit int) ([]*models.Notification, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"userId": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"campaignId": campaignID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	notification.CreatedAt = time.Now()
	notification.UpdatedAt = notification.CreatedAt
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// Update updates a notification
func (r *NotificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	notification.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": notification.ID}, notification)
	return err
}
