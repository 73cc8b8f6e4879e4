// Package reconciler replays the outbox against the venue service.
//
// A pass snapshots the unsynced actions and suggestions, sends each one
// independently, marks the ones the server accepted and records the pass
// time. Failed entries stay queued for the next pass; there is no backoff.
// At most one pass runs at a time and passes only run while online. Each
// entry is also claimed while it is being sent, so an immediate delivery
// and a pass never send the same entry twice.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/client/remote"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
)

const DefaultForegroundInterval = 15 * time.Minute

var (
	ErrSuggestionMissing = errors.New("suggestion not found")
	ErrEntryInFlight     = errors.New("entry is already being sent")
)

// Store is the part of the outbox the reconciler reads and updates.
type Store interface {
	Unsynced() ([]models.PendingAction, []models.Suggestion)
	ActionSynced(actionID string) bool
	Suggestion(id string) (models.Suggestion, bool)
	MarkActionSynced(ctx context.Context, actionID string)
	MarkSuggestionSynced(ctx context.Context, storeID, suggestionID string)
	SetLastSync(ctx context.Context, t time.Time)
	LastSync() time.Time
	ClearOldData(ctx context.Context) int
}

// Mode reports whether the client is currently online.
type Mode interface {
	Online() bool
}

type Reconciler struct {
	store    Store
	remote   remote.Facade
	mode     Mode
	logger   logging.Logger
	now      func() time.Time
	throttle time.Duration

	inFlight atomic.Bool
	sending  sync.Map
}

type Option func(*Reconciler)

// WithForegroundInterval sets the minimum time since the last pass before an
// app-foreground event starts a new one.
func WithForegroundInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.throttle = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func New(store Store, facade remote.Facade, mode Mode, logger logging.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    store,
		remote:   facade,
		mode:     mode,
		logger:   logger.With("module", "reconciler"),
		now:      time.Now,
		throttle: DefaultForegroundInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InFlight reports whether a pass is running.
func (r *Reconciler) InFlight() bool {
	return r.inFlight.Load()
}

// Sync runs one reconciliation pass. It returns a skipped summary when the
// client is offline or another pass is already running. Remote errors only
// affect the entry they occurred on and are never returned.
func (r *Reconciler) Sync(ctx context.Context) models.SyncSummary {
	if !r.mode.Online() {
		r.logger.Debug(ctx, "sync skipped: offline")
		return models.SyncSummary{Skipped: true}
	}
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Debug(ctx, "sync skipped: already in progress")
		return models.SyncSummary{Skipped: true}
	}
	defer r.inFlight.Store(false)

	actions, suggestions := r.store.Unsynced()

	r.logger.Info(ctx, "sync started", "actions", len(actions), "suggestions", len(suggestions))

	var sum models.SyncSummary
	attempted := make(map[string]struct{})

	for _, a := range actions {
		if a.Kind == models.KindSubmitSuggestion {
			attempted[a.Data.SuggestionID] = struct{}{}
		}
		err := r.Deliver(ctx, a)
		if errors.Is(err, ErrEntryInFlight) {
			r.logger.Debug(ctx, "action already being sent", "id", a.ID)
			continue
		}
		if err != nil {
			sum.Failed++
			r.logger.Warn(ctx, "action not synced", "id", a.ID, "kind", a.Kind, "error", err)
			continue
		}
		sum.Success++
	}

	// Suggestions without a queued action, e.g. loaded from an older snapshot.
	for _, s := range suggestions {
		if _, ok := attempted[s.ID]; ok {
			continue
		}
		err := r.submitOrphan(ctx, s)
		if errors.Is(err, ErrEntryInFlight) {
			continue
		}
		if err != nil {
			sum.Failed++
			r.logger.Warn(ctx, "suggestion not synced", "id", s.ID, "store", s.StoreID, "error", err)
			continue
		}
		sum.Success++
	}

	r.store.SetLastSync(ctx, r.now())
	removed := r.store.ClearOldData(ctx)

	r.logger.Info(ctx, "sync finished", "success", sum.Success, "failed", sum.Failed, "swept", removed)
	return sum
}

// Deliver sends a single action and marks it synced on success. It returns
// ErrEntryInFlight when the same entry is being sent by another caller and
// nil without sending when the entry was delivered in the meantime.
func (r *Reconciler) Deliver(ctx context.Context, a models.PendingAction) error {
	release, ok := r.claim(entryKey(a))
	if !ok {
		return ErrEntryInFlight
	}
	defer release()

	if r.store.ActionSynced(a.ID) {
		return nil
	}
	if err := a.Apply(ctx, replayer{r: r}); err != nil {
		return err
	}
	r.store.MarkActionSynced(ctx, a.ID)
	return nil
}

// submitOrphan sends a pending suggestion that has no queued action.
func (r *Reconciler) submitOrphan(ctx context.Context, s models.Suggestion) error {
	release, ok := r.claim(suggestionKey(s.ID))
	if !ok {
		return ErrEntryInFlight
	}
	defer release()

	if cur, found := r.store.Suggestion(s.ID); !found || cur.Synced {
		return nil
	}
	if err := r.remote.SubmitSuggestion(ctx, s.StoreID, s); err != nil {
		return err
	}
	r.store.MarkSuggestionSynced(ctx, s.StoreID, s.ID)
	return nil
}

func (r *Reconciler) claim(key string) (func(), bool) {
	if _, busy := r.sending.LoadOrStore(key, struct{}{}); busy {
		return nil, false
	}
	return func() { r.sending.Delete(key) }, true
}

// entryKey identifies what goes over the wire: a suggestion action and its
// pending record share one key.
func entryKey(a models.PendingAction) string {
	if a.Kind == models.KindSubmitSuggestion {
		return suggestionKey(a.Data.SuggestionID)
	}
	return "action:" + a.ID
}

func suggestionKey(id string) string { return "suggestion:" + id }

// OnReconnect runs a pass after the client comes back online.
func (r *Reconciler) OnReconnect(ctx context.Context) {
	r.Sync(ctx)
}

// OnForeground runs a pass only if the client is online and the previous
// pass is older than the foreground interval. The bool reports whether a
// pass was attempted.
func (r *Reconciler) OnForeground(ctx context.Context) (models.SyncSummary, bool) {
	if !r.mode.Online() {
		return models.SyncSummary{Skipped: true}, false
	}
	last := r.store.LastSync()
	if !last.IsZero() && r.now().Sub(last) <= r.throttle {
		return models.SyncSummary{Skipped: true}, false
	}
	return r.Sync(ctx), true
}

// SyncNow is the explicit user-requested pass. It ignores the foreground
// throttle but not the online or in-flight guards.
func (r *Reconciler) SyncNow(ctx context.Context) models.SyncSummary {
	return r.Sync(ctx)
}

// replayer adapts the remote facade to models.ActionHandler, resolving
// suggestion references against the store.
type replayer struct {
	r *Reconciler
}

func (p replayer) AddFavorite(ctx context.Context, storeID string) error {
	return p.r.remote.AddFavorite(ctx, storeID)
}

func (p replayer) RemoveFavorite(ctx context.Context, storeID string) error {
	return p.r.remote.RemoveFavorite(ctx, storeID)
}

func (p replayer) RecordSearch(ctx context.Context, query string) error {
	return p.r.remote.RecordSearch(ctx, query)
}

func (p replayer) SubmitSuggestion(ctx context.Context, storeID, suggestionID string) error {
	s, ok := p.r.store.Suggestion(suggestionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSuggestionMissing, suggestionID)
	}
	return p.r.remote.SubmitSuggestion(ctx, storeID, s)
}
