package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure CampaignRepository implements the interface
var _ repositories.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository implements the repositories.CampaignRepository interface
type CampaignRepository struct {
	collection *mongo.Collection
	ids        *sequence
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{
		collection: db.Collection("campaigns"),
		ids:        newSequence(db, "campaigns"),
	}
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// FindAll finds campaigns with pagination, optionally restricted to one status
func (r *CampaignRepository) FindAll(ctx context.Context, status models.CampaignStatus, page, limit int) ([]*models.Campaign, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"_id": -1}) // Newest first

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []*models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}

	// Ensure an empty slice is returned instead of nil if no campaigns found
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return campaigns, nil
}

// FindDue finds scheduled campaigns whose time has come
func (r *CampaignRepository) FindDue(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	filter := bson.M{
		"status":      models.CampaignStatusScheduled,
		"scheduledAt": bson.M{"$lte": now},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"scheduledAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []*models.Campaign
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	if campaigns == nil {
		campaigns = []*models.Campaign{}
	}
	return campaigns, nil
}

// Create creates a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	id, err := r.ids.Next(ctx)
	if err != nil {
		return fmt.Errorf("allocate campaign id: %w", err)
	}
	campaign.ID = id
	_, err = r.collection.InsertOne(ctx, campaign)
	return err
}

// Update replaces a campaign
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": campaign.ID}, campaign)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrCampaignNotFound
	}
	return nil
}

// Delete deletes a campaign
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrCampaignNotFound
	}
	return nil
}
