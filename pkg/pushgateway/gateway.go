package pushgateway

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Delivery statuses reported by gateways
const (
	StatusPending   = "PENDING"
	StatusDelivered = "DELIVERED"
	StatusFailed    = "FAILED"
)

var (
	// ErrNoPushDevice is returned for recipients without an active push-capable device
	ErrNoPushDevice = errors.New("recipient has no active push device")
	// ErrStatusPending means the gateway has not settled the delivery yet
	ErrStatusPending = errors.New("delivery status pending")
)

// Message is one push notification addressed to one user
type Message struct {
	UserID     int64  `json:"userId"`
	Email      string `json:"email"`
	CampaignID int64  `json:"campaignId"`
	Title      string `json:"title"`
	Body       string `json:"body"`
}

// Gateway represents a push delivery transport
type Gateway interface {
	Name() string
	Send(ctx context.Context, msg Message) (messageID string, err error)
	GetDeliveryStatus(ctx context.Context, messageID string) (string, error)
}

// MockGateway represents a mock push gateway for local runs and tests
type MockGateway struct {
	name string
	seq  atomic.Int64
	// FailFor makes Send fail for the listed user ids
	FailFor map[int64]bool
	// Status is returned by GetDeliveryStatus; defaults to DELIVERED
	Status string
}

// NewMockGateway creates a new mock push gateway
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{name: name}
}

func (g *MockGateway) Name() string { return g.name }

// Send pretends to deliver the message
func (g *MockGateway) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.FailFor[msg.UserID] {
		return "", fmt.Errorf("%s gateway rejected user %d", g.name, msg.UserID)
	}
	return fmt.Sprintf("%s-MOCK-MSG-%d-%d", g.name, time.Now().UnixNano(), g.seq.Add(1)), nil
}

// GetDeliveryStatus reports the configured status
func (g *MockGateway) GetDeliveryStatus(_ context.Context, _ string) (string, error) {
	if g.Status == "" {
		return StatusDelivered, nil
	}
	if g.Status == StatusPending {
		return StatusPending, ErrStatusPending
	}
	return g.Status, nil
}
