// Package remote talks to the venue service. Facade is what the reconciler
// replays outbox entries against; GRPCClient is the network implementation
// and BreakerFacade adds a circuit breaker in front of any Facade.
// GRPCClient also serves the venue catalogue reads.
package remote

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Facade is the write surface of the venue service. Any returned error means
// the entry stays queued and is retried on a later pass.
type Facade interface {
	AddFavorite(ctx context.Context, storeID string) error
	RemoveFavorite(ctx context.Context, storeID string) error
	RecordSearch(ctx context.Context, query string) error
	SubmitSuggestion(ctx context.Context, storeID string, s models.Suggestion) error
}
