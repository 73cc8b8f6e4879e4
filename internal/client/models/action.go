package models

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ActionKind tags a PendingAction. The string values are the persisted
// wire names and must not change.
type ActionKind string

const (
	KindAddFavorite      ActionKind = "favorite"
	KindRemoveFavorite   ActionKind = "unfavorite"
	KindSubmitSuggestion ActionKind = "suggestion"
	KindRecordSearch     ActionKind = "search_history"
)

var ErrUnknownActionKind = errors.New("unknown action kind")

func (k ActionKind) Valid() bool {
	switch k {
	case KindAddFavorite, KindRemoveFavorite, KindSubmitSuggestion, KindRecordSearch:
		return true
	}
	return false
}

// ActionData carries the kind-specific payload. Only the fields relevant to
// the action's kind are set.
type ActionData struct {
	StoreID      string `json:"storeId,omitempty"`
	Query        string `json:"query,omitempty"`
	SuggestionID string `json:"suggestionId,omitempty"`
}

// PendingAction is one outbox entry: an intent recorded locally that has to
// be replayed against the remote service.
//
// For KindSubmitSuggestion the Synced field is not authoritative; the
// referenced Suggestion's flag is.
type PendingAction struct {
	ID        string     `json:"id"`
	Kind      ActionKind `json:"type"`
	Data      ActionData `json:"data"`
	CreatedAt time.Time  `json:"timestamp"`
	Synced    bool       `json:"synced"`
}

// ActionHandler receives a PendingAction dispatched by kind. Every kind has
// exactly one method.
type ActionHandler interface {
	AddFavorite(ctx context.Context, storeID string) error
	RemoveFavorite(ctx context.Context, storeID string) error
	RecordSearch(ctx context.Context, query string) error
	SubmitSuggestion(ctx context.Context, storeID, suggestionID string) error
}

// Apply dispatches the action to the handler method matching its kind.
func (a PendingAction) Apply(ctx context.Context, h ActionHandler) error {
	switch a.Kind {
	case KindAddFavorite:
		return h.AddFavorite(ctx, a.Data.StoreID)
	case KindRemoveFavorite:
		return h.RemoveFavorite(ctx, a.Data.StoreID)
	case KindRecordSearch:
		return h.RecordSearch(ctx, a.Data.Query)
	case KindSubmitSuggestion:
		return h.SubmitSuggestion(ctx, a.Data.StoreID, a.Data.SuggestionID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionKind, a.Kind)
	}
}
