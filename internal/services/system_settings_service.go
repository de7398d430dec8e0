package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
)

// SystemSettingsServiceImpl implements SystemSettingsService
type SystemSettingsServiceImpl struct {
	settingsRepo repositories.SystemSettingsRepository
	router       *DeliveryRouter
}

// NewSystemSettingsService creates a new SystemSettingsService. The router
// decides which push gateway names are accepted.
func NewSystemSettingsService(settingsRepo repositories.SystemSettingsRepository, router *DeliveryRouter) *SystemSettingsServiceImpl {
	return &SystemSettingsServiceImpl{
		settingsRepo: settingsRepo,
		router:       router,
	}
}

// GetSettings retrieves the current system settings
func (s *SystemSettingsServiceImpl) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	return s.settingsRepo.GetSettings(ctx)
}

// UpdateReprogrammingRules replaces the rule set. Every rule must parse;
// evaluation skips malformed rules but they are never accepted here.
func (s *SystemSettingsServiceImpl) UpdateReprogrammingRules(ctx context.Context, rules []models.RuleConfig, updatedBy string) (*models.SystemSettings, error) {
	fields := map[string]string{}
	for i, r := range rules {
		if _, err := models.ParseRule(r); err != nil {
			fields[fmt.Sprintf("rules[%d]", i)] = err.Error()
		}
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}
	if rules == nil {
		rules = []models.RuleConfig{}
	}
	if err := s.settingsRepo.UpdateReprogrammingRules(ctx, rules, updatedBy); err != nil {
		return nil, err
	}
	return s.settingsRepo.GetSettings(ctx)
}

// UpdatePushGateway changes the primary push gateway
func (s *SystemSettingsServiceImpl) UpdatePushGateway(ctx context.Context, gateway string, updatedBy string) (*models.SystemSettings, error) {
	if !s.router.Has(gateway) {
		return nil, &models.ValidationError{Fields: map[string]string{
			"gateway": fmt.Sprintf("gateway %q is not configured", gateway),
		}}
	}
	if err := s.settingsRepo.UpdatePushGateway(ctx, gateway, updatedBy); err != nil {
		return nil, err
	}
	return s.settingsRepo.GetSettings(ctx)
}
