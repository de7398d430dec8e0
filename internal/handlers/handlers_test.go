package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/middleware"
	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories/memory"
	"github.com/ArowuTest/tourbook-backend/internal/services"
	"github.com/ArowuTest/tourbook-backend/pkg/lock"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	engine        *gin.Engine
	users         *memory.UserRepository
	notifications *memory.NotificationRepository
	reservations  *memory.ReservationRepository
}

func newTestServer(t *testing.T, reservations ...*models.Reservation) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := memory.NewUserRepository(
		&models.User{ID: 1, Name: "Ana", Role: "Cliente", Country: "PE", TripCount: 4, HasPushDevice: true, Active: true},
		&models.User{ID: 2, Name: "Luis", Role: "Cliente", Country: "CL", TripCount: 1, HasPushDevice: true, Active: true},
		&models.User{ID: 3, Name: "Rosa", Role: "Guia", Country: "PE", TripCount: 9, HasPushDevice: false, Active: true},
	)
	campaigns := memory.NewCampaignRepository()
	notifications := memory.NewNotificationRepository()
	settings := memory.NewSystemSettingsRepository(nil)
	reservationRepo := memory.NewReservationRepository(reservations...)
	locker := lock.NewKeyedMutex()

	router := services.NewDeliveryRouter(settings, logger, pushgateway.NewMockGateway(models.GatewayMock))
	campaignService := services.NewCampaignService(campaigns, notifications,
		services.NewAudienceResolver(users, logger), router, locker, logger)
	notificationService := services.NewNotificationService(notifications, router, services.PollPolicy{
		MaxAttempts:     1,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}, logger)
	reservationService := services.NewReservationService(reservationRepo, settings,
		services.NewRuleEngine(logger), locker, time.UTC, logger)

	campaignHandler := NewCampaignHandler(campaignService, notificationService, logger)
	reservationHandler := NewReservationHandler(reservationService, logger)
	notificationHandler := NewNotificationHandler(notificationService, logger)
	settingsHandler := NewSystemSettingsHandler(services.NewSystemSettingsService(settings, router), logger)
	userHandler := NewUserHandler(services.NewUserService(users, logger), logger)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.ActorKey, "ops-1")
		c.Set(middleware.RoleKey, "admin")
		c.Next()
	})
	engine.POST("/campaigns", campaignHandler.CreateCampaign)
	engine.GET("/campaigns", campaignHandler.GetCampaigns)
	engine.GET("/campaigns/:id", campaignHandler.GetCampaign)
	engine.PUT("/campaigns/:id", campaignHandler.UpdateCampaign)
	engine.DELETE("/campaigns/:id", campaignHandler.DeleteCampaign)
	engine.POST("/campaigns/:id/schedule", campaignHandler.ScheduleCampaign)
	engine.POST("/campaigns/:id/activate", campaignHandler.ActivateCampaign)
	engine.POST("/campaigns/:id/cancel", campaignHandler.CancelCampaign)
	engine.GET("/campaigns/:id/audience", campaignHandler.GetAudience)
	engine.GET("/campaigns/:id/metrics", campaignHandler.GetMetrics)
	engine.GET("/campaigns/:id/notifications", campaignHandler.GetNotifications)
	engine.POST("/campaigns/:id/deliveries", campaignHandler.RecordDelivery)
	engine.POST("/campaigns/:id/reads", campaignHandler.RecordRead)
	engine.POST("/notifications/:id/refresh-status", notificationHandler.RefreshStatus)
	engine.GET("/reservations/:id", reservationHandler.GetReservation)
	engine.POST("/reservations/:id/reprogramming/evaluate", reservationHandler.EvaluateReprogramming)
	engine.POST("/reservations/:id/reprogram", reservationHandler.Reprogram)
	engine.GET("/settings", settingsHandler.GetSettings)
	engine.PUT("/settings/reprogramming-rules", settingsHandler.UpdateReprogrammingRules)
	engine.PUT("/settings/push-gateway", settingsHandler.UpdatePushGateway)
	engine.GET("/users/count", userHandler.GetUserCount)
	engine.GET("/users/:id", userHandler.GetUserByID)

	return &testServer{
		engine:        engine,
		users:         users,
		notifications: notifications,
		reservations:  reservationRepo,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *testServer) createCampaign(t *testing.T, body map[string]any) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/campaigns", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c models.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	return c.ID
}

func immediate(audience string) map[string]any {
	return map[string]any{
		"title":           "Machu Picchu week",
		"body":            "New departures every Monday",
		"kind":            "promotional",
		"audience":        audience,
		"sendImmediately": true,
	}
}

func TestCreateCampaign(t *testing.T) {
	s := newTestServer(t)

	id := s.createCampaign(t, immediate("ALL"))

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "DRAFT", body["status"])
	assert.Equal(t, "ops-1", body["createdBy"])
}

func TestCreateCampaignValidationFailure(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/campaigns", map[string]any{
		"title":    "",
		"body":     "x",
		"kind":     "promotional",
		"audience": "EXPLICIT_USERS",
		"userIds":  []int64{},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields, ok := decode(t, rec)["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "userIds")
	assert.Contains(t, fields, "scheduledAt")
}

func TestCreateCampaignMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/campaigns", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivateCampaignSendsAndCompletes(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(t, immediate("ALL"))

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/activate", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 3, decode(t, rec)["recipients"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d/metrics", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "COMPLETED", body["status"])
	assert.EqualValues(t, 3, body["totalRecipients"])
	// user 3 has no push device
	assert.EqualValues(t, 2, body["totalSent"])
	assert.EqualValues(t, 1, body["totalErrors"])
	metrics := body["metrics"].(map[string]any)
	assert.EqualValues(t, 66.7, metrics["successRate"])
	assert.EqualValues(t, 33.3, metrics["errorRate"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d/notifications", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 3)
}

func TestActivateCampaignEmptyAudience(t *testing.T) {
	s := newTestServer(t)
	in := immediate("SEGMENT")
	in["segment"] = map[string]string{"country": "AR"}
	id := s.createCampaign(t, in)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/activate", id), nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "audience is empty")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d", id), nil)
	assert.Equal(t, "DRAFT", decode(t, rec)["status"])
}

func TestActivateCampaignRejectsBadForce(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(t, immediate("ALL"))

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/activate?force=maybe", id), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidTransitionReturnsConflict(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(t, immediate("ALL"))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/cancel", id), nil).Code)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/activate", id), nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "activate", body["action"])
	assert.Equal(t, "CANCELLED", body["status"])
}

func TestScheduleAndUpdateCampaign(t *testing.T) {
	s := newTestServer(t)
	in := immediate("EXPLICIT_USERS")
	in["sendImmediately"] = false
	in["scheduledAt"] = time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	in["userIds"] = []int64{2, 1, 99}
	id := s.createCampaign(t, in)

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/schedule", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SCHEDULED", decode(t, rec)["status"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d/audience", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	audience := decode(t, rec)
	assert.EqualValues(t, 2, audience["count"])
	assert.EqualValues(t, 1, audience["dropped"])

	in["title"] = "Updated title"
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/campaigns/%d", id), in)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Updated title", decode(t, rec)["title"])

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/activate", id), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["detail"])
}

func TestDeleteCampaign(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(t, immediate("ALL"))

	rec := s.do(t, http.MethodDelete, fmt.Sprintf("/campaigns/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCampaignsByStatus(t *testing.T) {
	s := newTestServer(t)
	first := s.createCampaign(t, immediate("ALL"))
	s.createCampaign(t, immediate("ALL"))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/cancel", first), nil).Code)

	rec := s.do(t, http.MethodGet, "/campaigns?status=CANCELLED", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 1)
}

func TestRecordDeliveryAndRead(t *testing.T) {
	s := newTestServer(t)
	id := s.createCampaign(t, immediate("ALL"))

	rec := s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/deliveries", id), map[string]string{"outcome": "bounced"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no recipients yet, so the callback is dropped but still accepted
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/deliveries", id), map[string]string{"outcome": "success"})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/reads", id), nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d", id), nil)
	body := decode(t, rec)
	assert.EqualValues(t, 0, body["totalSent"])
	assert.EqualValues(t, 1, body["totalRead"])
}

func TestInvalidIDs(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/campaigns/abc"},
		{http.MethodGet, "/campaigns/0"},
		{http.MethodPost, "/campaigns/-4/activate"},
		{http.MethodGet, "/reservations/x"},
		{http.MethodGet, "/users/x"},
		{http.MethodPost, "/notifications/not-an-object-id/refresh-status"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRefreshNotificationStatus(t *testing.T) {
	s := newTestServer(t)
	in := immediate("EXPLICIT_USERS")
	in["userIds"] = []int64{1}
	id := s.createCampaign(t, in)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, fmt.Sprintf("/campaigns/%d/activate", id), nil).Code)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d/notifications", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].([]any)
	require.Len(t, data, 1)
	notificationID := data[0].(map[string]any)["id"].(string)

	rec = s.do(t, http.MethodPost, "/notifications/"+notificationID+"/refresh-status", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.NotificationDelivered, decode(t, rec)["status"])
}

func TestReprogramReservation(t *testing.T) {
	start := time.Now().Add(10 * 24 * time.Hour).UTC().Truncate(time.Second)
	s := newTestServer(t, &models.Reservation{
		ID:         7,
		CustomerID: 1,
		StartAt:    start,
		EndAt:      start.Add(72 * time.Hour),
	})

	t.Run("evaluate denies short lead time", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/reservations/7/reprogramming/evaluate", map[string]any{
			"proposedStart": time.Now().Add(2 * time.Hour).UTC(),
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["allowed"])
		assert.Equal(t, services.ReasonInsufficientLeadTime, body["reason"])
	})

	t.Run("reason is required", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/reservations/7/reprogram", map[string]any{
			"proposedStart": start.Add(24 * time.Hour),
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decode(t, rec)["fields"], "reason")
	})

	t.Run("allowed reprogram shifts the stay", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/reservations/7/reprogram", map[string]any{
			"proposedStart": start.Add(24 * time.Hour),
			"reason":        "flight changed",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, true, body["allowed"])
		reservation := body["reservation"].(map[string]any)
		assert.EqualValues(t, 1, reservation["reprogrammingCount"])
	})

	t.Run("denied reprogram is not an error", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/reservations/7/reprogram", map[string]any{
			"proposedStart": time.Now().Add(time.Hour).UTC(),
			"reason":        "earlier please",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decode(t, rec)["allowed"])
	})

	t.Run("unknown reservation", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/reservations/404", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSystemSettings(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.GatewayMock, decode(t, rec)["pushGateway"])

	rec = s.do(t, http.MethodPut, "/settings/push-gateway", map[string]string{"gateway": "CARRIER_PIGEON"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/settings/reprogramming-rules", map[string]any{
		"rules": []map[string]any{{"kind": "BLACKOUT_DATES", "dates": []string{"2026-13-01"}}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/settings/reprogramming-rules", map[string]any{
		"rules": []map[string]any{{"kind": "MAX_REPROGRAMMINGS", "max": 1}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Len(t, body["reprogrammingRules"], 1)
	assert.Equal(t, "ops-1", body["updatedBy"])
}

func TestUsers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/users/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decode(t, rec)["count"])

	rec = s.do(t, http.MethodGet, "/users/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Luis", decode(t, rec)["name"])

	rec = s.do(t, http.MethodGet, "/users/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
