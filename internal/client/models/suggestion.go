package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a user-proposed edit to one field of a venue record. Value
// is kept as raw JSON because fields differ in shape (text, counts, photo
// keys, opening hours).
type Suggestion struct {
	ID        string           `json:"id" validate:"required"`
	StoreID   string           `json:"storeId" validate:"required"`
	Field     string           `json:"field" validate:"required,max=64"`
	Value     json.RawMessage  `json:"value" validate:"required"`
	Status    SuggestionStatus `json:"status" validate:"oneof=pending approved rejected"`
	Comment   string           `json:"comment,omitempty" validate:"max=500"`
	UserID    string           `json:"userId,omitempty"`
	Anonymous bool             `json:"anonymous"`
	CreatedAt time.Time        `json:"createdAt"`
	Synced    bool             `json:"synced"`
}

// NewSuggestion builds a pending suggestion for field with value encoded as
// JSON. ID and CreatedAt are filled in by the outbox.
func NewSuggestion(field string, value any) (Suggestion, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggestion{Field: field, Value: raw, Status: SuggestionPending}, nil
}

// Clone returns a copy that shares no memory with s.
func (s Suggestion) Clone() Suggestion {
	s.Value = bytes.Clone(s.Value)
	return s
}
