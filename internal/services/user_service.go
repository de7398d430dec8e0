package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"go.uber.org/zap"
)

// ImportSummary reports the outcome of a population import
type ImportSummary struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// UserService handles the notification population
type UserService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// CountUsers returns the size of the stored population
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// Import creates or replaces each user, keeping the original creation time of existing ones
func (s *UserService) Import(ctx context.Context, users []*models.User) ImportSummary {
	var summary ImportSummary
	for _, u := range users {
		now := time.Now()
		if existing, err := s.userRepo.FindByID(ctx, u.ID); err == nil {
			u.CreatedAt = existing.CreatedAt
		} else {
			u.CreatedAt = now
		}
		u.UpdatedAt = now
		if err := s.userRepo.Upsert(ctx, u); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("user %d: %v", u.ID, err))
			continue
		}
		summary.Imported++
	}
	s.logger.Info("population import finished",
		zap.Int("imported", summary.Imported),
		zap.Int("failed", summary.Failed),
	)
	return summary
}
