package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.SystemSettingsRepository = (*SystemSettingsRepository)(nil)

// SystemSettingsRepository implements repositories.SystemSettingsRepository
type SystemSettingsRepository struct {
	collection *mongo.Collection
}

// NewSystemSettingsRepository creates a new SystemSettingsRepository
func NewSystemSettingsRepository(db *mongo.Database) *SystemSettingsRepository {
	return &SystemSettingsRepository{
		collection: db.Collection("system_settings"),
	}
}

// GetSettings retrieves the current system settings
func (r *SystemSettingsRepository) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	var settings models.SystemSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// If no settings exist, create default settings
		defaults := models.DefaultSystemSettings(time.Now())
		if _, err = r.collection.InsertOne(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateReprogrammingRules replaces the configured reprogramming rules
func (r *SystemSettingsRepository) UpdateReprogrammingRules(ctx context.Context, rules []models.RuleConfig, updatedBy string) error {
	return r.set(ctx, bson.M{"reprogrammingRules": rules}, updatedBy)
}

// UpdatePushGateway updates only the primary push gateway
func (r *SystemSettingsRepository) UpdatePushGateway(ctx context.Context, gateway string, updatedBy string) error {
	return r.set(ctx, bson.M{"pushGateway": gateway}, updatedBy)
}

func (r *SystemSettingsRepository) set(ctx context.Context, fields bson.M, updatedBy string) error {
	// Make sure the defaults document exists before patching it
	if _, err := r.GetSettings(ctx); err != nil {
		return err
	}
	fields["updatedAt"] = time.Now()
	fields["updatedBy"] = updatedBy
	_, err := r.collection.UpdateOne(ctx, bson.M{}, bson.M{"$set": fields}, options.Update())
	return err
}
