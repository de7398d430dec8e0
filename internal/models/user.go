package models

import (
	"time"
)

// User represents a member of the notification population
type User struct {
	ID            int64     `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	Role          string    `bson:"role" json:"role"`
	Country       string    `bson:"country" json:"country"`
	Gender        string    `bson:"gender" json:"gender"`
	TripCount     int       `bson:"tripCount" json:"tripCount"`
	HasPushDevice bool      `bson:"hasPushDevice" json:"hasPushDevice"`
	Active        bool      `bson:"active" json:"active"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Recipient is a resolved target of a campaign at dispatch time
type Recipient struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	HasPushDevice bool   `json:"hasPushDevice"`
}

// ToRecipient snapshots the user as a recipient
func (u *User) ToRecipient() Recipient {
	return Recipient{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		HasPushDevice: u.HasPushDevice,
	}
}
