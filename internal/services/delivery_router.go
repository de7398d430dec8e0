package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/ArowuTest/tourbook-backend/internal/repositories"
	"github.com/ArowuTest/tourbook-backend/pkg/pushgateway"
	"go.uber.org/zap"
)

// fallbackOrder is tried after the configured gateway fails
var fallbackOrder = []string{models.GatewayHTTP, models.GatewayKafka, models.GatewayMock}

// DeliveryRouter sends campaign messages through the push gateway chosen in
// system settings, falling back to the other configured gateways on failure
type DeliveryRouter struct {
	gateways     map[string]pushgateway.Gateway
	settingsRepo repositories.SystemSettingsRepository
	logger       *zap.Logger
}

// NewDeliveryRouter creates a new DeliveryRouter over the given gateways, keyed by their names
func NewDeliveryRouter(settingsRepo repositories.SystemSettingsRepository, logger *zap.Logger, gateways ...pushgateway.Gateway) *DeliveryRouter {
	byName := make(map[string]pushgateway.Gateway, len(gateways))
	for _, g := range gateways {
		if g != nil {
			byName[g.Name()] = g
		}
	}
	return &DeliveryRouter{
		gateways:     byName,
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// Gateway returns the configured gateway with the given name
func (r *DeliveryRouter) Gateway(name string) (pushgateway.Gateway, bool) {
	g, ok := r.gateways[name]
	return g, ok
}

// Has reports whether a gateway with the given name is configured
func (r *DeliveryRouter) Has(name string) bool {
	_, ok := r.gateways[name]
	return ok
}

// Dispatch sends one message. Recipients without a push device fail without
// touching any gateway.
func (r *DeliveryRouter) Dispatch(ctx context.Context, campaignID int64, recipient models.Recipient, title, body string) (DispatchReceipt, error) {
	if !recipient.HasPushDevice {
		return DispatchReceipt{}, pushgateway.ErrNoPushDevice
	}

	settings, err := r.settingsRepo.GetSettings(ctx)
	if err != nil {
		return DispatchReceipt{}, fmt.Errorf("failed to get system settings: %w", err)
	}

	msg := pushgateway.Message{
		UserID:     recipient.ID,
		Email:      recipient.Email,
		CampaignID: campaignID,
		Title:      title,
		Body:       body,
	}

	var errs []error
	for _, name := range r.candidates(settings.PushGateway) {
		g := r.gateways[name]
		messageID, err := g.Send(ctx, msg)
		if err == nil {
			if name != settings.PushGateway {
				r.logger.Info("push sent through fallback gateway",
					zap.String("configured", settings.PushGateway),
					zap.String("used", name),
					zap.Int64("user_id", recipient.ID),
				)
			}
			return DispatchReceipt{Gateway: name, MessageID: messageID}, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	if len(errs) == 0 {
		return DispatchReceipt{}, fmt.Errorf("no push gateway configured (wanted %q)", settings.PushGateway)
	}
	return DispatchReceipt{}, errors.Join(errs...)
}

func (r *DeliveryRouter) candidates(primary string) []string {
	out := make([]string, 0, len(r.gateways))
	if r.Has(primary) {
		out = append(out, primary)
	}
	for _, name := range fallbackOrder {
		if name != primary && r.Has(name) {
			out = append(out, name)
		}
	}
	return out
}
