package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/config"
	"github.com/ArowuTest/tourbook-backend/internal/handlers"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories/memory"
	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/ArowuTest/tourbook-backend/pkg/jwt"
	"github.com/ArowuTest/tourbook-backend/pkg/lock"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (*gin.Engine, *jwt.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := memory.NewUserRepository()
	notifications := memory.NewNotificationRepository()
	settings := memory.NewSystemSettingsRepository(nil)
	locker := lock.NewKeyedMutex()
	router := services.NewDeliveryRouter(settings, logger,
		pushgateway.NewMockGateway(models.GatewayMock),
		pushgateway.NewMockGateway(models.GatewayKafka),
	)
	campaignService := services.NewCampaignService(memory.NewCampaignRepository(), notifications,
		services.NewAudienceResolver(users, logger), router, locker, logger)
	notificationService := services.NewNotificationService(notifications, router, services.DefaultPollPolicy, logger)

	deps := HandlerDependencies{
		CampaignHandler: handlers.NewCampaignHandler(campaignService, notificationService, logger),
		ReservationHandler: handlers.NewReservationHandler(services.NewReservationService(
			memory.NewReservationRepository(), settings, services.NewRuleEngine(logger), locker, time.UTC, logger,
		), logger),
		NotificationHandler:   handlers.NewNotificationHandler(notificationService, logger),
		SystemSettingsHandler: handlers.NewSystemSettingsHandler(services.NewSystemSettingsService(settings, router), logger),
		UserHandler:           handlers.NewUserHandler(services.NewUserService(users, logger), logger),
	}

	cfg := &config.Config{Server: config.ServerConfig{AllowedHosts: []string{"localhost:3000"}}}
	tokens := jwt.NewTokenService("routes-test-secret", time.Hour)
	return SetupRouter(cfg, deps, tokens, logger), tokens
}

func TestRouteAccess(t *testing.T) {
	engine, tokens := newRouter(t)

	adminToken, err := tokens.Issue("admin-1", jwt.RoleAdmin)
	require.NoError(t, err)
	operatorToken, err := tokens.Issue("ops-1", jwt.RoleOperator)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", "", http.StatusOK},
		{"metrics are public", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"campaigns need a token", http.MethodGet, "/api/v1/campaigns", "", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/campaigns", "not-a-jwt", "", http.StatusUnauthorized},
		{"operator lists campaigns", http.MethodGet, "/api/v1/campaigns", operatorToken, "", http.StatusOK},
		{"operator reads settings", http.MethodGet, "/api/v1/settings", operatorToken, "", http.StatusOK},
		{"operator cannot change gateway", http.MethodPut, "/api/v1/settings/push-gateway", operatorToken, `{"gateway":"KAFKA"}`, http.StatusForbidden},
		{"admin changes gateway", http.MethodPut, "/api/v1/settings/push-gateway", adminToken, `{"gateway":"KAFKA"}`, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/draws", adminToken, "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
