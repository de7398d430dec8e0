package services

import (
	"context"
	"testing"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories/memory"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSystemSettingsService(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSystemSettingsRepository(nil)
	router := NewDeliveryRouter(repo, zap.NewNop(),
		pushgateway.NewMockGateway(models.GatewayMock),
		pushgateway.NewMockGateway(models.GatewayKafka),
	)
	svc := NewSystemSettingsService(repo, router)

	defaults, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GatewayMock, defaults.PushGateway)
	assert.Len(t, defaults.ReprogrammingRules, 2)

	t.Run("rejects malformed rules", func(t *testing.T) {
		_, err := svc.UpdateReprogrammingRules(ctx, []models.RuleConfig{
			{Kind: models.RuleMaxReprogrammings, Max: ptr(1)},
			{Kind: models.RuleBlackoutDates},
		}, "admin")
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "rules[1]")
	})

	t.Run("replaces rules", func(t *testing.T) {
		updated, err := svc.UpdateReprogrammingRules(ctx, []models.RuleConfig{
			{Kind: models.RuleBlackoutDates, Dates: []string{"2026-07-28"}},
		}, "admin")
		require.NoError(t, err)
		assert.Len(t, updated.ReprogrammingRules, 1)
		assert.Equal(t, "admin", updated.UpdatedBy)
	})

	t.Run("gateway must be configured", func(t *testing.T) {
		_, err := svc.UpdatePushGateway(ctx, models.GatewayHTTP, "admin")
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)

		updated, err := svc.UpdatePushGateway(ctx, models.GatewayKafka, "admin")
		require.NoError(t, err)
		assert.Equal(t, models.GatewayKafka, updated.PushGateway)
	})
}
