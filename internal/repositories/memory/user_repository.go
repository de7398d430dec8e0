package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository keeps the population in a map
type UserRepository struct {
	mu    sync.RWMutex
	users map[int64]models.User
}

// NewUserRepository creates a repository seeded with users
func NewUserRepository(users ...*models.User) *UserRepository {
	r := &UserRepository{users: map[int64]models.User{}}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

func (r *UserRepository) FindActive(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		if !u.Active {
			continue
		}
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) Upsert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// Remove deletes a user, simulating an account removal after a campaign was authored
func (r *UserRepository) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func (r *UserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
