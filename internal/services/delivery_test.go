package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories/memory"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeliveryRouter_UsesConfiguredGateway(t *testing.T) {
	ctx := context.Background()
	settings := memory.NewSystemSettingsRepository(nil)
	require.NoError(t, settings.UpdatePushGateway(ctx, models.GatewayHTTP, "admin"))

	httpGw := pushgateway.NewMockGateway(models.GatewayHTTP)
	mockGw := pushgateway.NewMockGateway(models.GatewayMock)
	router := NewDeliveryRouter(settings, zap.NewNop(), mockGw, httpGw)

	receipt, err := router.Dispatch(ctx, 1, models.Recipient{ID: 5, HasPushDevice: true}, "t", "b")
	require.NoError(t, err)
	assert.Equal(t, models.GatewayHTTP, receipt.Gateway)
	assert.NotEmpty(t, receipt.MessageID)
}

func TestDeliveryRouter_FallsBack(t *testing.T) {
	ctx := context.Background()
	settings := memory.NewSystemSettingsRepository(nil)
	require.NoError(t, settings.UpdatePushGateway(ctx, models.GatewayHTTP, "admin"))

	httpGw := pushgateway.NewMockGateway(models.GatewayHTTP)
	httpGw.FailFor = map[int64]bool{5: true}
	kafkaGw := pushgateway.NewMockGateway(models.GatewayKafka)
	router := NewDeliveryRouter(settings, zap.NewNop(), httpGw, kafkaGw)

	receipt, err := router.Dispatch(ctx, 1, models.Recipient{ID: 5, HasPushDevice: true}, "t", "b")
	require.NoError(t, err)
	assert.Equal(t, models.GatewayKafka, receipt.Gateway)

	kafkaGw.FailFor = map[int64]bool{5: true}
	_, err = router.Dispatch(ctx, 1, models.Recipient{ID: 5, HasPushDevice: true}, "t", "b")
	assert.ErrorContains(t, err, "HTTP")
	assert.ErrorContains(t, err, "KAFKA")
}

func TestDeliveryRouter_NoPushDevice(t *testing.T) {
	router := NewDeliveryRouter(memory.NewSystemSettingsRepository(nil), zap.NewNop(), pushgateway.NewMockGateway(models.GatewayMock))

	_, err := router.Dispatch(context.Background(), 1, models.Recipient{ID: 5}, "t", "b")
	assert.ErrorIs(t, err, pushgateway.ErrNoPushDevice)
}

func newNotificationService(t *testing.T, gw pushgateway.Gateway, n *models.Notification) (*NotificationService, *memory.NotificationRepository) {
	t.Helper()
	repo := memory.NewNotificationRepository()
	require.NoError(t, repo.Create(context.Background(), n))
	router := NewDeliveryRouter(memory.NewSystemSettingsRepository(nil), zap.NewNop(), gw)
	policy := PollPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	return NewNotificationService(repo, router, policy, zap.NewNop()), repo
}

func TestRefreshStatus_Delivered(t *testing.T) {
	gw := pushgateway.NewMockGateway(models.GatewayMock)
	n := &models.Notification{CampaignID: 1, UserID: 2, Status: models.NotificationSent, Gateway: models.GatewayMock, MessageID: "m-1"}
	svc, repo := newNotificationService(t, gw, n)

	got, err := svc.RefreshStatus(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDelivered, got.Status)
	assert.False(t, got.DeliveryDate.IsZero())

	stored, err := repo.FindByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationDelivered, stored.Status)
}

func TestRefreshStatus_StillPending(t *testing.T) {
	gw := pushgateway.NewMockGateway(models.GatewayMock)
	gw.Status = pushgateway.StatusPending
	n := &models.Notification{CampaignID: 1, UserID: 2, Status: models.NotificationSent, Gateway: models.GatewayMock, MessageID: "m-1"}
	svc, repo := newNotificationService(t, gw, n)

	_, err := svc.RefreshStatus(context.Background(), n.ID)
	assert.ErrorIs(t, err, ErrStatusNotYetAvailable)

	stored, err := repo.FindByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, stored.Status)
}

func TestRefreshStatus_SettledRecordUnchanged(t *testing.T) {
	gw := pushgateway.NewMockGateway(models.GatewayMock)
	n := &models.Notification{CampaignID: 1, UserID: 2, Status: models.NotificationFailed, Error: "no device"}
	svc, _ := newNotificationService(t, gw, n)

	got, err := svc.RefreshStatus(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFailed, got.Status)
}

func TestScheduler_PromoteDue(t *testing.T) {
	f := newFixture(t, population(3)...)
	ctx := context.Background()

	scheduled := func(at time.Time, audience models.AudienceMode, ids ...int64) *models.Campaign {
		in := immediateInput(audience)
		in.SendImmediately = false
		in.ScheduledAt = &at
		in.UserIDs = ids
		c := f.create(t, in)
		_, err := f.svc.Schedule(ctx, c.ID)
		require.NoError(t, err)
		return c
	}
	due := scheduled(testNow.Add(time.Hour), models.AudienceAll)
	empty := scheduled(testNow.Add(time.Hour), models.AudienceExplicit, 3)
	later := scheduled(testNow.Add(48*time.Hour), models.AudienceAll)
	f.users.Remove(3)

	// the scheduler runs after the campaigns became due
	f.svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	report, err := NewScheduler(f.campaigns, f.svc, zap.NewNop()).PromoteDue(ctx, testNow.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, SweepReport{Due: 2, Activated: 1, Failed: 1}, report)
	assert.Equal(t, models.CampaignStatusCompleted, f.reload(t, due.ID).Status)
	assert.Equal(t, models.CampaignStatusScheduled, f.reload(t, empty.ID).Status)
	assert.Equal(t, models.CampaignStatusScheduled, f.reload(t, later.ID).Status)
}
