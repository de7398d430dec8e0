package models

import (
	"time"
)

// CampaignStatus is the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusScheduled CampaignStatus = "SCHEDULED"
	CampaignStatusRunning   CampaignStatus = "RUNNING"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
)

// IsTerminal reports whether no transition may leave the status
func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusCancelled
}

// IsEditable reports whether content and targeting may still change
func (s CampaignStatus) IsEditable() bool {
	return s == CampaignStatusDraft || s == CampaignStatusScheduled
}

// AudienceMode determines how the recipients of a campaign are computed
type AudienceMode string

const (
	AudienceAll      AudienceMode = "ALL"
	AudienceExplicit AudienceMode = "EXPLICIT_USERS"
	AudienceSegment  AudienceMode = "SEGMENT"
)

// NotificationKind classifies the content of a campaign
type NotificationKind string

const (
	KindInformational     NotificationKind = "informational"
	KindPromotional       NotificationKind = "promotional"
	KindUrgent            NotificationKind = "urgent"
	KindMarketingCampaign NotificationKind = "marketing_campaign"
	KindSystemUpdate      NotificationKind = "system_update"
)

// Content limits, counted in characters
const (
	MaxTitleLength = 100
	MaxBodyLength  = 500
)

// Campaign represents a push notification campaign
type Campaign struct {
	ID       int64            `bson:"_id" json:"id"`
	Title    string           `bson:"title" json:"title"`
	Body     string           `bson:"body" json:"body"`
	Kind     NotificationKind `bson:"kind" json:"kind"`
	Audience AudienceMode     `bson:"audience" json:"audience"`
	// UserIDs is ordered; resolution preserves this order
	UserIDs []int64 `bson:"userIds,omitempty" json:"userIds,omitempty"`
	// Segment maps a filter key to its raw value, see ParseSegment
	Segment         map[string]string `bson:"segment,omitempty" json:"segment,omitempty"`
	SendImmediately bool              `bson:"sendImmediately" json:"sendImmediately"`
	ScheduledAt     *time.Time        `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	Status          CampaignStatus    `bson:"status" json:"status"`
	TotalRecipients int               `bson:"totalRecipients" json:"totalRecipients"`
	TotalSent       int               `bson:"totalSent" json:"totalSent"`
	TotalRead       int               `bson:"totalRead" json:"totalRead"`
	TotalErrors     int               `bson:"totalErrors" json:"totalErrors"`
	SentAt          *time.Time        `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CompletedAt     *time.Time        `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt     *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedBy       string            `bson:"createdBy" json:"createdBy"`
	CreatedAt       time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// Processed is the number of recipients with a recorded delivery outcome
func (c *Campaign) Processed() int {
	return c.TotalSent + c.TotalErrors
}

// Clone returns a deep copy so callers can hand out snapshots
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	out := *c
	if c.UserIDs != nil {
		out.UserIDs = append([]int64(nil), c.UserIDs...)
	}
	if c.Segment != nil {
		out.Segment = make(map[string]string, len(c.Segment))
		for k, v := range c.Segment {
			out.Segment[k] = v
		}
	}
	out.ScheduledAt = cloneTime(c.ScheduledAt)
	out.SentAt = cloneTime(c.SentAt)
	out.CompletedAt = cloneTime(c.CompletedAt)
	out.CancelledAt = cloneTime(c.CancelledAt)
	return &out
}

// CampaignInput carries the editable fields of a campaign from a form submission
type CampaignInput struct {
	Title           string            `json:"title" validate:"required,notblank,max=100"`
	Body            string            `json:"body" validate:"required,notblank,max=500"`
	Kind            NotificationKind  `json:"kind" validate:"required,oneof=informational promotional urgent marketing_campaign system_update"`
	Audience        AudienceMode      `json:"audience" validate:"required,oneof=ALL EXPLICIT_USERS SEGMENT"`
	UserIDs         []int64           `json:"userIds"`
	Segment         map[string]string `json:"segment"`
	SendImmediately bool              `json:"sendImmediately"`
	ScheduledAt     *time.Time        `json:"scheduledAt"`
}

// DeliveryOutcome is reported once per recipient by the delivery collaborator
type DeliveryOutcome string

const (
	DeliverySuccess DeliveryOutcome = "success"
	DeliveryFailure DeliveryOutcome = "failure"
)

// CampaignMetrics holds derived delivery percentages
type CampaignMetrics struct {
	SuccessRate float64 `json:"successRate"`
	OpenRate    float64 `json:"openRate"`
	ErrorRate   float64 `json:"errorRate"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
