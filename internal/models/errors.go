package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
)

// ValidationError lists every invalid field of a submission
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidStateError is returned when a transition is not allowed from the current state
type InvalidStateError struct {
	Action string
	Status CampaignStatus
	Detail string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("action %q not available in state %s", e.Action, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// EmptyAudienceError is returned when activation resolves no recipients
type EmptyAudienceError struct {
	CampaignID int64
	Audience   AudienceMode
	Dropped    int
}

func (e *EmptyAudienceError) Error() string {
	return fmt.Sprintf("campaign %d resolved no recipients for audience %s (%d ids dropped); adjust the targeting",
		e.CampaignID, e.Audience, e.Dropped)
}
