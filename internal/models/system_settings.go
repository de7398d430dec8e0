package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Push gateway names
const (
	GatewayMock  = "MOCK"
	GatewayHTTP  = "HTTP"
	GatewayKafka = "KAFKA"
)

// SystemSettings represents system-wide configuration settings
type SystemSettings struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PushGateway        string             `bson:"pushGateway" json:"pushGateway"` // MOCK, HTTP, KAFKA
	ReprogrammingRules []RuleConfig       `bson:"reprogrammingRules" json:"reprogrammingRules"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy          string             `bson:"updatedBy" json:"updatedBy"`
}

// DefaultSystemSettings is stored the first time settings are read
func DefaultSystemSettings(now time.Time) *SystemSettings {
	hours := 48.0
	maxCount := 2
	return &SystemSettings{
		PushGateway: GatewayMock,
		ReprogrammingRules: []RuleConfig{
			{Kind: RuleMaxReprogrammings, Max: &maxCount},
			{Kind: RuleMinimumLeadTime, Hours: &hours},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
