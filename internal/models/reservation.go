package models

import (
	"time"
)

// Reservation represents a customer booking that may be reprogrammed
type Reservation struct {
	ID                  int64                 `bson:"_id" json:"id"`
	CustomerID          int64                 `bson:"customerId" json:"customerId"`
	StartAt             time.Time             `bson:"startAt" json:"startAt"`
	EndAt               time.Time             `bson:"endAt" json:"endAt"`
	ReprogrammingCount  int                   `bson:"reprogrammingCount" json:"reprogrammingCount"`
	ReprogrammingReason string                `bson:"reprogrammingReason,omitempty" json:"reprogrammingReason,omitempty"`
	History             []ReprogrammingRecord `bson:"history,omitempty" json:"history,omitempty"`
	CreatedAt           time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// ReprogrammingRecord is an entry in a reservation's date-change history
type ReprogrammingRecord struct {
	FromStart   time.Time `bson:"fromStart" json:"fromStart"`
	FromEnd     time.Time `bson:"fromEnd" json:"fromEnd"`
	ToStart     time.Time `bson:"toStart" json:"toStart"`
	ToEnd       time.Time `bson:"toEnd" json:"toEnd"`
	Reason      string    `bson:"reason" json:"reason"`
	RequestedBy string    `bson:"requestedBy" json:"requestedBy"`
	At          time.Time `bson:"at" json:"at"`
}

// Clone returns a deep copy of the reservation
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	out := *r
	if r.History != nil {
		out.History = append([]ReprogrammingRecord(nil), r.History...)
	}
	return &out
}
