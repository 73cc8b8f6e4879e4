package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/sony/gobreaker/v2"
)

// BreakerFacade short-circuits calls to a failing server. After
// maxFailures consecutive transport failures it fails fast with
// ErrUnavailable until openTimeout elapses, then lets a single trial call
// through. Errors the server returned on purpose (validation, not found,
// auth) do not count towards tripping.
type BreakerFacade struct {
	next Facade
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerFacade(next Facade, maxFailures uint32, openTimeout time.Duration, logger logging.Logger) *BreakerFacade {
	if maxFailures == 0 {
		maxFailures = 1
	}
	logger = logger.With("module", "breaker")

	st := gobreaker.Settings{
		Name:        "venue-service",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isTransportHealthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerFacade{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](st)}
}

// isTransportHealthy reports whether err says nothing about server
// reachability. A rejected entry must not open the breaker for the rest of
// the queue.
func isTransportHealthy(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrUnavailable) && !errors.Is(err, context.DeadlineExceeded)
}

func (b *BreakerFacade) do(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (b *BreakerFacade) AddFavorite(ctx context.Context, storeID string) error {
	return b.do(func() error { return b.next.AddFavorite(ctx, storeID) })
}

func (b *BreakerFacade) RemoveFavorite(ctx context.Context, storeID string) error {
	return b.do(func() error { return b.next.RemoveFavorite(ctx, storeID) })
}

func (b *BreakerFacade) RecordSearch(ctx context.Context, query string) error {
	return b.do(func() error { return b.next.RecordSearch(ctx, query) })
}

func (b *BreakerFacade) SubmitSuggestion(ctx context.Context, storeID string, s models.Suggestion) error {
	return b.do(func() error { return b.next.SubmitSuggestion(ctx, storeID, s) })
}

// State reports the breaker state ("closed", "open", "half-open").
func (b *BreakerFacade) State() string {
	return b.cb.State().String()
}
