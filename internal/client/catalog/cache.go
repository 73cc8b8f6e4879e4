// Package catalog keeps a local copy of the venue catalogue so venues can be
// browsed and searched offline.
//
// The catalogue is stored as one JSON document under CacheKey together with
// the time it was fetched. While online, a copy younger than the validity
// window is served as is and an older one is refreshed from the server. When
// the refresh fails, or the client is offline, whatever copy exists is
// served, however old.
package catalog

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
	"github.com/dmitrijs2005/cabinetmap/internal/client/remote"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
)

const (
	CacheKey = "venue_cache"

	DefaultMaxAge = 30 * time.Minute
)

var (
	ErrNoCachedVenues = errors.New("no cached venues, connect once to download them")
	ErrVenueNotFound  = errors.New("venue not found")
)

// Source is the server side of the catalogue.
type Source interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
	GetVenue(ctx context.Context, id string) (models.Venue, error)
}

// Mode reports whether the client is currently online.
type Mode interface {
	Online() bool
}

// Listing is a catalogue read. Cached is set when the venues came from the
// local copy rather than a fetch made for this call.
type Listing struct {
	Venues    []models.Venue
	FetchedAt time.Time
	Cached    bool
}

type Cache struct {
	mu sync.Mutex

	store  kvstore.Store
	source Source
	mode   Mode
	logger logging.Logger
	maxAge time.Duration
	now    func() time.Time
}

type Option func(*Cache)

// WithMaxAge sets how long a fetched catalogue is served without asking the
// server again.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(store kvstore.Store, source Source, mode Mode, logger logging.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		source: source,
		mode:   mode,
		logger: logger.With("module", "catalog"),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Valid reports whether a cached catalogue exists and is younger than the
// validity window.
func (c *Cache) Valid(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.loadLocked(ctx)
	return ok && c.freshLocked(cached)
}

// Venues returns the catalogue, fetching it when online and the local copy
// is missing or stale.
func (c *Cache) Venues(ctx context.Context) (Listing, error) {
	return c.venues(ctx, false)
}

// Refresh fetches the catalogue regardless of the age of the local copy.
// Offline or on failure it falls back to the local copy like Venues.
func (c *Cache) Refresh(ctx context.Context) (Listing, error) {
	return c.venues(ctx, true)
}

func (c *Cache) venues(ctx context.Context, force bool) (Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.loadLocked(ctx)
	if ok && !force && c.freshLocked(cached) {
		return Listing{Venues: cached.Venues, FetchedAt: cached.FetchedAt, Cached: true}, nil
	}

	if c.mode.Online() {
		list, err := c.source.ListVenues(ctx)
		if err == nil {
			fresh := models.VenueCache{Venues: list, FetchedAt: c.now()}
			c.saveLocked(ctx, fresh)
			return Listing{Venues: fresh.Venues, FetchedAt: fresh.FetchedAt}, nil
		}
		c.logger.Warn(ctx, "venue fetch failed, serving cached copy", "error", err)
	}

	if !ok {
		return Listing{}, ErrNoCachedVenues
	}
	return Listing{Venues: cached.Venues, FetchedAt: cached.FetchedAt, Cached: true}, nil
}

// Venue returns one venue. Online it is fetched from the server and the
// local copy is updated; offline, or when the server cannot be reached, the
// local copy is used.
func (c *Cache) Venue(ctx context.Context, id string) (models.Venue, bool, error) {
	id = strings.TrimSpace(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.loadLocked(ctx)

	if c.mode.Online() {
		v, err := c.source.GetVenue(ctx, id)
		switch {
		case err == nil:
			if ok {
				c.saveLocked(ctx, upsert(cached, v))
			}
			return v, false, nil
		case errors.Is(err, remote.ErrNotFound):
			return models.Venue{}, false, ErrVenueNotFound
		default:
			c.logger.Warn(ctx, "venue fetch failed, serving cached copy", "id", id, "error", err)
		}
	}

	if !ok {
		return models.Venue{}, false, ErrNoCachedVenues
	}
	i := slices.IndexFunc(cached.Venues, func(v models.Venue) bool { return v.ID == id })
	if i < 0 {
		return models.Venue{}, true, ErrVenueNotFound
	}
	return cached.Venues[i], true, nil
}

// Clear drops the local copy.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Remove(ctx, CacheKey)
}

func (c *Cache) freshLocked(vc models.VenueCache) bool {
	return c.now().Sub(vc.FetchedAt) < c.maxAge
}

// loadLocked reads the local copy. Unreadable or corrupt data counts as no
// copy.
func (c *Cache) loadLocked(ctx context.Context) (models.VenueCache, bool) {
	raw, err := c.store.Get(ctx, CacheKey)
	if err != nil {
		c.logger.Error(ctx, "failed to load venue cache", "error", err)
		return models.VenueCache{}, false
	}
	if raw == nil {
		return models.VenueCache{}, false
	}

	var vc models.VenueCache
	if err := json.Unmarshal(raw, &vc); err != nil {
		c.logger.Error(ctx, "corrupt venue cache, ignoring", "error", err)
		return models.VenueCache{}, false
	}
	if vc.Venues == nil {
		vc.Venues = []models.Venue{}
	}
	return vc, true
}

func (c *Cache) saveLocked(ctx context.Context, vc models.VenueCache) {
	raw, err := json.Marshal(vc)
	if err != nil {
		c.logger.Error(ctx, "failed to encode venue cache", "error", err)
		return
	}
	if err := c.store.Set(ctx, CacheKey, raw); err != nil {
		c.logger.Error(ctx, "failed to save venue cache", "error", err)
	}
}

// upsert replaces or appends v, keeping the fetch time of the catalogue.
func upsert(vc models.VenueCache, v models.Venue) models.VenueCache {
	out := models.VenueCache{Venues: slices.Clone(vc.Venues), FetchedAt: vc.FetchedAt}
	if i := slices.IndexFunc(out.Venues, func(x models.Venue) bool { return x.ID == v.ID }); i >= 0 {
		out.Venues[i] = v
	} else {
		out.Venues = append(out.Venues, v)
	}
	return out
}
