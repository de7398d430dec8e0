package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
)

var _ repositories.SystemSettingsRepository = (*SystemSettingsRepository)(nil)

// SystemSettingsRepository keeps one settings document
type SystemSettingsRepository struct {
	mu       sync.Mutex
	settings *models.SystemSettings
}

// NewSystemSettingsRepository creates a repository; nil settings means defaults on first read
func NewSystemSettingsRepository(settings *models.SystemSettings) *SystemSettingsRepository {
	return &SystemSettingsRepository{settings: settings}
}

func (r *SystemSettingsRepository) GetSettings(_ context.Context) (*models.SystemSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current(), nil
}

func (r *SystemSettingsRepository) UpdateReprogrammingRules(_ context.Context, rules []models.RuleConfig, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.current()
	s.ReprogrammingRules = append([]models.RuleConfig(nil), rules...)
	s.UpdatedBy = updatedBy
	s.UpdatedAt = time.Now()
	r.settings = s
	return nil
}

func (r *SystemSettingsRepository) UpdatePushGateway(_ context.Context, gateway string, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.current()
	s.PushGateway = gateway
	s.UpdatedBy = updatedBy
	s.UpdatedAt = time.Now()
	r.settings = s
	return nil
}

// current returns a copy of the stored settings, creating defaults first. Callers hold mu.
func (r *SystemSettingsRepository) current() *models.SystemSettings {
	if r.settings == nil {
		r.settings = models.DefaultSystemSettings(time.Now())
	}
	s := *r.settings
	s.ReprogrammingRules = append([]models.RuleConfig(nil), r.settings.ReprogrammingRules...)
	return &s
}
