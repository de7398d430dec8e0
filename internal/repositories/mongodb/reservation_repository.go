package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.ReservationRepository = (*ReservationRepository)(nil)

// ReservationRepository reads and writes reservations
type ReservationRepository struct {
	collection *mongo.Collection
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{
		collection: db.Collection("reservations"),
	}
}

// FindByID finds a reservation by ID
func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Update replaces a reservation
func (r *ReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	reservation.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": reservation.ID}, reservation)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrReservationNotFound
	}
	return nil
}
