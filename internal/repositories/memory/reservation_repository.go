package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
)

var _ repositories.ReservationRepository = (*ReservationRepository)(nil)

// ReservationRepository keeps reservations in a map
type ReservationRepository struct {
	mu           sync.RWMutex
	reservations map[int64]*models.Reservation
}

// NewReservationRepository creates a repository seeded with reservations
func NewReservationRepository(reservations ...*models.Reservation) *ReservationRepository {
	r := &ReservationRepository{reservations: map[int64]*models.Reservation{}}
	for _, res := range reservations {
		r.reservations[res.ID] = res.Clone()
	}
	return r
}

func (r *ReservationRepository) FindByID(_ context.Context, id int64) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, models.ErrReservationNotFound
	}
	return res.Clone(), nil
}

func (r *ReservationRepository) Update(_ context.Context, reservation *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[reservation.ID]; !ok {
		return models.ErrReservationNotFound
	}
	reservation.UpdatedAt = time.Now()
	r.reservations[reservation.ID] = reservation.Clone()
	return nil
}
