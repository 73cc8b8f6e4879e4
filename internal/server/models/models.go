// Package models holds the server-side records of the venue service.
package models

import "time"

// FavoriteEvent kinds, stored in favorite_events.kind.
const (
	EventAdded   = "added"
	EventRemoved = "removed"
)

// Favorite is a store a device has starred.
type Favorite struct {
	DeviceID  string
	StoreID   string
	CreatedAt time.Time
}

// FavoriteEvent is one row of the favorites audit trail.
type FavoriteEvent struct {
	ID        int64
	DeviceID  string
	StoreID   string
	Kind      string
	CreatedAt time.Time
}

// Search is a query recorded for a device.
type Search struct {
	ID        int64
	DeviceID  string
	Query     string
	CreatedAt time.Time
}

const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionRejected = "rejected"
)

// Suggestion is a user-proposed edit to a store listing, queued for
// moderation. ClientID is the id the submitting device generated, which
// makes resubmission idempotent.
type Suggestion struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId" validate:"required"`
	DeviceID  string    `json:"deviceId" validate:"required"`
	StoreID   string    `json:"storeId" validate:"required"`
	Field     string    `json:"field" validate:"required,max=64"`
	Value     []byte    `json:"value" validate:"required"`
	Comment   string    `json:"comment" validate:"max=500"`
	Anonymous bool      `json:"anonymous"`
	Status    string    `json:"status" validate:"oneof=pending approved rejected"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpeningHours is one day's "HH:MM" opening window. A close time at or past
// 24:00 ("25:30") runs into the next day.
type OpeningHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Venue is an arcade listing as served to clients. BusinessHours is keyed
// by lower-case English weekday name.
type Venue struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Address       string                  `json:"address"`
	Latitude      float64                 `json:"latitude"`
	Longitude     float64                 `json:"longitude"`
	Cabinets      int                     `json:"cabinets"`
	Versions      []string                `json:"versions"`
	Facilities    []string                `json:"facilities"`
	BusinessHours map[string]OpeningHours `json:"businessHours"`
	SpecialNotice string                  `json:"specialNotice,omitempty"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}
