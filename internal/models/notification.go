package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification delivery statuses
const (
	NotificationPending   = "PENDING"
	NotificationSent      = "SENT"
	NotificationFailed    = "FAILED"
	NotificationDelivered = "DELIVERED"
)

// Notification represents a push sent to one recipient of a campaign
type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CampaignID   int64              `bson:"campaignId" json:"campaignId"`
	UserID       int64              `bson:"userId" json:"userId"`
	Status       string             `bson:"status" json:"status"`
	Gateway      string             `bson:"gateway,omitempty" json:"gateway,omitempty"` // MOCK, HTTP, KAFKA
	MessageID    string             `bson:"messageId,omitempty" json:"messageId,omitempty"`
	Error        string             `bson:"error,omitempty" json:"error,omitempty"`
	SentDate     time.Time          `bson:"sentDate,omitempty" json:"sentDate,omitempty"`
	DeliveryDate time.Time          `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
