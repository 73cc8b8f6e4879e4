// Package outbox holds the device's offline state: favorites, search
// history, pending suggestions and the log of actions waiting to be replayed
// against the venue service.
//
// Every mutation is written through to a kvstore.Store as one JSON snapshot
// under SnapshotKey. Storage failures are logged and swallowed: the
// in-memory state stays authoritative for the session, and callers never
// see persistence errors.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/kvstore"
	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/google/uuid"
)

const (
	SnapshotKey = "offline_data"

	DefaultHistoryCap = 50
	DefaultRetention  = 24 * time.Hour
)

var (
	ErrEmptyStoreID = errors.New("store id is required")
	ErrEmptyQuery   = errors.New("search query is required")
	ErrEmptyField   = errors.New("suggestion field is required")
)

type Outbox struct {
	mu sync.Mutex

	store  kvstore.Store
	logger logging.Logger

	historyCap int
	retention  time.Duration
	now        func() time.Time
	newID      func() string

	data models.Snapshot
}

type Option func(*Outbox)

// WithHistoryCap bounds the search history length. Values below 1 are ignored.
func WithHistoryCap(n int) Option {
	return func(o *Outbox) {
		if n > 0 {
			o.historyCap = n
		}
	}
}

// WithRetention sets how long synced entries survive ClearOldData.
func WithRetention(d time.Duration) Option {
	return func(o *Outbox) {
		if d > 0 {
			o.retention = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Outbox) { o.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(o *Outbox) { o.newID = fn }
}

func New(store kvstore.Store, logger logging.Logger, opts ...Option) *Outbox {
	o := &Outbox{
		store:      store,
		logger:     logger.With("module", "outbox"),
		historyCap: DefaultHistoryCap,
		retention:  DefaultRetention,
		now:        time.Now,
		newID:      uuid.NewString,
		data:       models.EmptySnapshot(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Initialize loads the persisted snapshot. Missing, unreadable or corrupt
// data leaves the outbox empty; it never fails. Calling it again reloads.
func (o *Outbox) Initialize(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.data = models.EmptySnapshot()

	raw, err := o.store.Get(ctx, SnapshotKey)
	if err != nil {
		o.logger.Error(ctx, "failed to load offline data", "error", err)
		return
	}
	if raw == nil {
		return
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		o.logger.Error(ctx, "corrupt offline data, starting empty", "error", err)
		return
	}

	o.data = normalize(snap)
	o.trimHistoryLocked()
	o.logger.Debug(ctx, "offline data loaded",
		"favorites", len(o.data.Favorites),
		"actions", len(o.data.Actions),
		"suggestions", len(o.data.Suggestions))
}

func normalize(s models.Snapshot) models.Snapshot {
	if s.Favorites == nil {
		s.Favorites = []string{}
	}
	if s.SearchHistory == nil {
		s.SearchHistory = []string{}
	}
	if s.Suggestions == nil {
		s.Suggestions = []models.Suggestion{}
	}
	if s.Actions == nil {
		s.Actions = []models.PendingAction{}
	}
	return s
}

// AddFavorite adds storeID to the favorite set and queues the action. A store
// that is already a favorite is a no-op: nil action, nothing queued.
// Surrounding whitespace is trimmed from storeID.
func (o *Outbox) AddFavorite(ctx context.Context, storeID string) (*models.PendingAction, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, ErrEmptyStoreID
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if slices.Contains(o.data.Favorites, storeID) {
		return nil, nil
	}

	o.data.Favorites = append(o.data.Favorites, storeID)
	a := o.queueLocked(models.KindAddFavorite, models.ActionData{StoreID: storeID})
	o.persistLocked(ctx)
	return &a, nil
}

// RemoveFavorite drops storeID from the favorite set. The action is queued
// even when the store was not a favorite.
func (o *Outbox) RemoveFavorite(ctx context.Context, storeID string) (*models.PendingAction, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, ErrEmptyStoreID
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.data.Favorites = slices.DeleteFunc(o.data.Favorites, func(id string) bool { return id == storeID })
	a := o.queueLocked(models.KindRemoveFavorite, models.ActionData{StoreID: storeID})
	o.persistLocked(ctx)
	return &a, nil
}

// AddSearchHistory moves query to the front of the history, dropping any
// earlier copy and truncating to the history cap. The query is stored
// trimmed, so " akiba" and "akiba" are the same entry.
func (o *Outbox) AddSearchHistory(ctx context.Context, query string) (*models.PendingAction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	history := slices.DeleteFunc(o.data.SearchHistory, func(q string) bool { return q == query })
	o.data.SearchHistory = append([]string{query}, history...)
	o.trimHistoryLocked()

	a := o.queueLocked(models.KindRecordSearch, models.ActionData{Query: query})
	o.persistLocked(ctx)
	return &a, nil
}

// AddSuggestion stores s as a pending suggestion for storeID and queues a
// submit action referencing it. Missing ID and CreatedAt are filled in.
func (o *Outbox) AddSuggestion(ctx context.Context, storeID string, s models.Suggestion) (*models.PendingAction, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, ErrEmptyStoreID
	}
	if strings.TrimSpace(s.Field) == "" {
		return nil, ErrEmptyField
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s = s.Clone()
	s.StoreID = storeID
	s.Synced = false
	if s.ID == "" {
		s.ID = o.newID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = o.now()
	}
	if s.Status == "" {
		s.Status = models.SuggestionPending
	}

	o.data.Suggestions = append(o.data.Suggestions, s)
	a := o.queueLocked(models.KindSubmitSuggestion, models.ActionData{StoreID: storeID, SuggestionID: s.ID})
	o.persistLocked(ctx)
	return &a, nil
}

func (o *Outbox) Favorites() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.data.Favorites)
}

func (o *Outbox) IsFavorite(storeID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Contains(o.data.Favorites, storeID)
}

func (o *Outbox) SearchHistory() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.data.SearchHistory)
}

// PendingSuggestions returns the suggestions not yet accepted by the server.
func (o *Outbox) PendingSuggestions() []models.Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.Suggestion, 0, len(o.data.Suggestions))
	for _, s := range o.data.Suggestions {
		if !s.Synced {
			out = append(out, s.Clone())
		}
	}
	return out
}

func (o *Outbox) Suggestion(id string) (models.Suggestion, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if i := o.suggestionIndexLocked(id); i >= 0 {
		return o.data.Suggestions[i].Clone(), true
	}
	return models.Suggestion{}, false
}

// UnsyncedActions returns the queued actions still waiting for the server,
// oldest first.
func (o *Outbox) UnsyncedActions() []models.PendingAction {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]models.PendingAction, 0, len(o.data.Actions))
	for _, a := range o.data.Actions {
		if !o.actionSyncedLocked(a) {
			a.Synced = false
			out = append(out, a)
		}
	}
	return out
}

// Unsynced returns the unsynced actions and the pending suggestions as one
// consistent view, so a suggestion delivered between two separate reads is
// never reported as both queued and orphaned.
func (o *Outbox) Unsynced() ([]models.PendingAction, []models.Suggestion) {
	o.mu.Lock()
	defer o.mu.Unlock()

	actions := make([]models.PendingAction, 0, len(o.data.Actions))
	for _, a := range o.data.Actions {
		if !o.actionSyncedLocked(a) {
			a.Synced = false
			actions = append(actions, a)
		}
	}
	suggestions := make([]models.Suggestion, 0, len(o.data.Suggestions))
	for _, s := range o.data.Suggestions {
		if !s.Synced {
			suggestions = append(suggestions, s.Clone())
		}
	}
	return actions, suggestions
}

// ActionSynced reports whether the queued action with actionID has already
// been delivered. Unknown ids report false.
func (o *Outbox) ActionSynced(actionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	i := slices.IndexFunc(o.data.Actions, func(a models.PendingAction) bool { return a.ID == actionID })
	return i >= 0 && o.actionSyncedLocked(o.data.Actions[i])
}

// MarkActionSynced flags the action as delivered. For a suggestion action
// the referenced suggestion is marked instead. Unknown ids are ignored.
func (o *Outbox) MarkActionSynced(ctx context.Context, actionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	i := slices.IndexFunc(o.data.Actions, func(a models.PendingAction) bool { return a.ID == actionID })
	if i < 0 {
		return
	}

	a := &o.data.Actions[i]
	if a.Kind == models.KindSubmitSuggestion {
		if !o.markSuggestionLocked(a.Data.StoreID, a.Data.SuggestionID) {
			return
		}
	} else {
		if a.Synced {
			return
		}
		a.Synced = true
	}
	o.persistLocked(ctx)
}

// MarkSuggestionSynced flags a suggestion as accepted. Unknown pairs are
// ignored.
func (o *Outbox) MarkSuggestionSynced(ctx context.Context, storeID, suggestionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.markSuggestionLocked(storeID, suggestionID) {
		o.persistLocked(ctx)
	}
}

func (o *Outbox) SetLastSync(ctx context.Context, t time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.data.LastSync = t
	o.persistLocked(ctx)
}

// LastSync returns the time of the last reconciliation pass, zero if none.
func (o *Outbox) LastSync() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data.LastSync
}

func (o *Outbox) Stats() models.Stats {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := models.Stats{
		TotalActions:  len(o.data.Actions),
		Favorites:     len(o.data.Favorites),
		SearchHistory: len(o.data.SearchHistory),
	}
	for _, a := range o.data.Actions {
		if !o.actionSyncedLocked(a) {
			st.UnsyncedActions++
		}
	}
	for _, s := range o.data.Suggestions {
		if !s.Synced {
			st.PendingSuggestions++
		}
	}
	if !o.data.LastSync.IsZero() {
		ls := o.data.LastSync
		st.LastSync = &ls
	}
	return st
}

// Reset discards everything and persists the empty snapshot.
func (o *Outbox) Reset(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.data = models.EmptySnapshot()
	o.persistLocked(ctx)
	o.logger.Info(ctx, "offline data reset")
}

// ClearOldData drops synced actions and suggestions older than the retention
// window. Unsynced entries are kept regardless of age. Returns the number of
// entries removed.
func (o *Outbox) ClearOldData(ctx context.Context) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	cutoff := o.now().Add(-o.retention)
	expired := func(created time.Time, synced bool) bool {
		return synced && created.Before(cutoff)
	}

	// Actions first: a suggestion action's state is read from its suggestion.
	before := len(o.data.Actions) + len(o.data.Suggestions)
	o.data.Actions = slices.DeleteFunc(o.data.Actions, func(a models.PendingAction) bool {
		return expired(a.CreatedAt, o.actionSyncedLocked(a))
	})
	o.data.Suggestions = slices.DeleteFunc(o.data.Suggestions, func(s models.Suggestion) bool {
		return expired(s.CreatedAt, s.Synced)
	})
	removed := before - len(o.data.Actions) - len(o.data.Suggestions)

	if removed > 0 {
		o.persistLocked(ctx)
		o.logger.Debug(ctx, "old outbox entries cleared", "removed", removed)
	}
	return removed
}

func (o *Outbox) queueLocked(kind models.ActionKind, data models.ActionData) models.PendingAction {
	a := models.PendingAction{
		ID:        o.newID(),
		Kind:      kind,
		Data:      data,
		CreatedAt: o.now(),
	}
	o.data.Actions = append(o.data.Actions, a)
	return a
}

func (o *Outbox) actionSyncedLocked(a models.PendingAction) bool {
	if a.Kind != models.KindSubmitSuggestion {
		return a.Synced
	}
	i := o.suggestionIndexLocked(a.Data.SuggestionID)
	return i < 0 || o.data.Suggestions[i].Synced
}

func (o *Outbox) suggestionIndexLocked(id string) int {
	return slices.IndexFunc(o.data.Suggestions, func(s models.Suggestion) bool { return s.ID == id })
}

func (o *Outbox) markSuggestionLocked(storeID, suggestionID string) bool {
	i := o.suggestionIndexLocked(suggestionID)
	if i < 0 || o.data.Suggestions[i].StoreID != storeID || o.data.Suggestions[i].Synced {
		return false
	}
	o.data.Suggestions[i].Synced = true
	return true
}

func (o *Outbox) trimHistoryLocked() {
	if len(o.data.SearchHistory) > o.historyCap {
		o.data.SearchHistory = o.data.SearchHistory[:o.historyCap]
	}
}

func (o *Outbox) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(o.data)
	if err != nil {
		o.logger.Error(ctx, "failed to encode offline data", "error", err)
		return
	}
	if err := o.store.Set(ctx, SnapshotKey, raw); err != nil {
		o.logger.Error(ctx, "failed to save offline data", "error", err)
	}
}
