package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/cabinetmap/internal/client/catalog"
	"github.com/dmitrijs2005/cabinetmap/internal/client/config"
	"github.com/dmitrijs2005/cabinetmap/internal/client/connectivity"
	"github.com/dmitrijs2005/cabinetmap/internal/client/kvstore"
	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/client/remote"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	mu     sync.Mutex
	calls  []string
	down   bool
	venues []models.Venue
	lists  int
}

func (f *fakeRemote) rec(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) AddFavorite(_ context.Context, id string) error    { return f.rec("add:" + id) }
func (f *fakeRemote) RemoveFavorite(_ context.Context, id string) error { return f.rec("remove:" + id) }
func (f *fakeRemote) RecordSearch(_ context.Context, q string) error    { return f.rec("search:" + q) }
func (f *fakeRemote) SubmitSuggestion(_ context.Context, storeID string, s models.Suggestion) error {
	return f.rec("suggest:" + storeID + ":" + s.Field + "=" + string(s.Value))
}
func (f *fakeRemote) PresignPhotoUpload(context.Context, string) (string, string, error) {
	return "", "", errors.New("not in tests")
}
func (f *fakeRemote) ListVenues(context.Context) ([]models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.down {
		return nil, remote.ErrUnavailable
	}
	return append([]models.Venue(nil), f.venues...), nil
}
func (f *fakeRemote) GetVenue(_ context.Context, id string) (models.Venue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return models.Venue{}, remote.ErrUnavailable
	}
	for _, v := range f.venues {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Venue{}, fmt.Errorf("%w: venue %s", remote.ErrNotFound, id)
}
func (f *fakeRemote) Ping(context.Context) error {
	if f.down {
		return errors.New("down")
	}
	return nil
}

func newTestApp(t *testing.T) (*App, *fakeRemote, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	remote := &fakeRemote{}
	app := assemble(cfg, kvstore.NewMemoryStore(), remote, logging.Discard())
	out := &bytes.Buffer{}
	app.out = out
	app.svc.Initialize(context.Background())
	return app, remote, out
}

func TestApp_OfflineCommandsThenReconnect(t *testing.T) {
	app, remote, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Fav(ctx, "s1"))
	require.NoError(t, app.Search(ctx, "shibuya"))
	require.NoError(t, app.Suggest(ctx, "s1", "cabinets", "12", ""))
	require.NoError(t, app.Suggest(ctx, "s1", "hours", "10-24", "weekends"))
	assert.Empty(t, remote.Calls(), "offline: nothing is sent")

	out.Reset()
	require.NoError(t, app.Stats(ctx))
	assert.Contains(t, out.String(), "Mode:                offline")
	assert.Contains(t, out.String(), "Last sync:           never")
	assert.Contains(t, out.String(), "Queued actions:      4 (4 unsynced)")

	app.mode.Observe(ctx, connectivity.Status{IsConnected: true, IsInternetReachable: true})

	assert.Equal(t, []string{
		"add:s1",
		"search:shibuya",
		"suggest:s1:cabinets=12",
		`suggest:s1:hours="10-24"`,
	}, remote.Calls())
	assert.Empty(t, app.svc.UnsyncedActions())
}

func TestApp_OnlineDeliversImmediately(t *testing.T) {
	app, remote, out := newTestApp(t)
	ctx := context.Background()
	app.mode.Observe(ctx, connectivity.Status{IsConnected: true, IsInternetReachable: true})

	require.NoError(t, app.Fav(ctx, "s9"))
	require.NoError(t, app.Unfav(ctx, "s9"))
	assert.Equal(t, []string{"add:s9", "remove:s9"}, remote.Calls())

	out.Reset()
	require.NoError(t, app.Pending(ctx))
	assert.Equal(t, "Nothing pending\n", out.String())

	out.Reset()
	require.NoError(t, app.Sync(ctx))
	assert.Equal(t, "Synced: 0 ok, 0 failed\n", out.String())
}

func TestApp_ListingCommands(t *testing.T) {
	app, _, out := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Favs(ctx))
	assert.Equal(t, "No favorites yet\n", out.String())

	require.NoError(t, app.Fav(ctx, "s1"))
	require.NoError(t, app.Search(ctx, "a"))
	require.NoError(t, app.Search(ctx, "b"))

	out.Reset()
	require.NoError(t, app.Favs(ctx))
	assert.Equal(t, "s1\n", out.String())

	out.Reset()
	require.NoError(t, app.History(ctx))
	assert.Equal(t, " 1. b\n 2. a\n", out.String())

	out.Reset()
	require.NoError(t, app.Pending(ctx))
	assert.Contains(t, out.String(), `search_history  "a"`)
	assert.Contains(t, out.String(), "favorite        s1")

	out.Reset()
	require.NoError(t, app.Sync(ctx))
	assert.Equal(t, "Sync skipped (offline or already running)\n", out.String())

	out.Reset()
	require.NoError(t, app.Sweep(ctx))
	assert.Equal(t, "Removed 0 old entries\n", out.String())

	out.Reset()
	require.NoError(t, app.Reset(ctx))
	assert.Empty(t, app.svc.Favorites())
}

func TestApp_CommandErrors(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	assert.Error(t, app.Fav(ctx, ""))
	assert.Error(t, app.Suggest(ctx, "s1", "", "x", ""))
	assert.Error(t, app.Photo(ctx, "s1", "/nonexistent"))
}

func TestResolveDeviceID(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	id, err := resolveDeviceID(ctx, store, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	again, err := resolveDeviceID(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, id, again, "id is stable across runs")

	configured, err := resolveDeviceID(ctx, store, "kiosk-7")
	require.NoError(t, err)
	assert.Equal(t, "kiosk-7", configured)
}

func TestNewApp_WiresSQLiteStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "cm.db")
	cfg.ServerEndpointAddr = "127.0.0.1:1"

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.Len(t, app.closers, 2)
	require.NoError(t, app.Close())
}

func TestNewApp_InMemory(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.InMemory = true

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.Len(t, app.closers, 1)
	require.NoError(t, app.Close())
}

func TestApp_StatusShowsModeAndUnsynced(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	assert.Equal(t, "offline, 0 unsynced", app.status())

	require.NoError(t, app.Fav(ctx, "s1"))
	require.NoError(t, app.Search(ctx, "q"))
	assert.Equal(t, "offline, 2 unsynced", app.status())
}

func TestApp_ForegroundSyncsWhenOnline(t *testing.T) {
	app, remote, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Fav(ctx, "s1"))
	app.Foreground(ctx)
	assert.Empty(t, remote.Calls(), "offline foreground does nothing")

	app.mode.Observe(ctx, connectivity.Status{IsConnected: true, IsInternetReachable: true})
	require.NoError(t, app.Fav(ctx, "s2"))
	app.Foreground(ctx)
	assert.Equal(t, []string{"add:s1", "add:s2"}, remote.Calls(), "throttled after the reconnect pass")
}

func TestApp_RunStopsBackgroundWorkBeforeClosing(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.in = strings.NewReader("help\n")

	var watcherStopped, closed bool
	app.closers = append(app.closers, func() error {
		closed = true
		select {
		case <-app.watcherDone:
			watcherStopped = true
		default:
		}
		assert.False(t, app.rec.InFlight(), "no pass is running while resources close")
		return nil
	})

	require.NoError(t, app.Run(context.Background()))
	assert.True(t, closed)
	assert.True(t, watcherStopped, "status watcher exits before the connection closes")
	assert.Empty(t, app.closers)
}

var (
	online  = connectivity.Status{IsConnected: true, IsInternetReachable: true}
	offline = connectivity.Status{}
)

func testVenues() []models.Venue {
	return []models.Venue{
		{ID: "v1", Name: "Round One Akiba", Address: "Sotokanda 1", Cabinets: 8,
			Versions: []string{"SUN"}, Facilities: []string{"parking"}},
		{ID: "v2", Name: "Taito Station", Address: "Shibuya 2", Cabinets: 2,
			Versions: []string{"LUMINOUS"}, SpecialNotice: "closed for renovation"},
	}
}

func TestApp_SearchUsesCachedVenuesOffline(t *testing.T) {
	app, rem, out := newTestApp(t)
	ctx := context.Background()
	rem.venues = testVenues()

	require.NoError(t, app.Search(ctx, "round"))
	assert.Equal(t, "Search recorded; no venues cached yet\n", out.String())
	assert.Zero(t, rem.lists, "offline: no fetch")

	app.mode.Observe(ctx, online)
	out.Reset()
	require.NoError(t, app.Refresh(ctx))
	assert.Equal(t, "Downloaded 2 venues\n", out.String())

	app.mode.Observe(ctx, offline)
	out.Reset()
	require.NoError(t, app.Search(ctx, "round"))
	assert.Contains(t, out.String(), "Round One Akiba")
	assert.NotContains(t, out.String(), "Taito Station")
	assert.Contains(t, out.String(), "(cached ")
	assert.Equal(t, 1, rem.lists)

	assert.Equal(t, "round", app.svc.SearchHistory()[0])
}

func TestApp_VenuesFiltersAndRefreshFallsBack(t *testing.T) {
	app, rem, out := newTestApp(t)
	ctx := context.Background()
	rem.venues = testVenues()
	app.mode.Observe(ctx, online)

	require.NoError(t, app.Venues(ctx, catalog.Filter{Cabinets: catalog.CabinetsFew}))
	assert.Contains(t, out.String(), "Taito Station")
	assert.NotContains(t, out.String(), "Round One")

	out.Reset()
	require.NoError(t, app.Venues(ctx, catalog.Filter{Keyword: "nowhere"}))
	assert.Contains(t, out.String(), "No venues match")
	assert.Equal(t, 1, rem.lists, "second read is served from the fresh cache")

	rem.down = true
	out.Reset()
	require.NoError(t, app.Refresh(ctx))
	assert.Equal(t, "Server unreachable, keeping 2 cached venues\n", out.String())
}

func TestApp_VenueDetails(t *testing.T) {
	app, rem, out := newTestApp(t)
	ctx := context.Background()
	rem.venues = testVenues()

	assert.ErrorIs(t, app.Venue(ctx, "v2"), catalog.ErrNoCachedVenues)

	app.mode.Observe(ctx, online)
	require.NoError(t, app.Fav(ctx, "v2"))
	require.NoError(t, app.Venue(ctx, "v2"))
	assert.Contains(t, out.String(), "Name:        Taito Station")
	assert.Contains(t, out.String(), "Favorite:    yes")
	assert.Contains(t, out.String(), "Notice:      closed for renovation")
	assert.NotContains(t, out.String(), "(from cache)")

	assert.ErrorIs(t, app.Venue(ctx, "v404"), catalog.ErrVenueNotFound)

	require.NoError(t, app.Refresh(ctx))
	app.mode.Observe(ctx, offline)
	out.Reset()
	require.NoError(t, app.Venue(ctx, "v1"))
	assert.Contains(t, out.String(), "Cabinets:    8")
	assert.Contains(t, out.String(), "Favorite:    no")
	assert.Contains(t, out.String(), "(from cache)")
}

func TestApp_ResetClearsVenueCache(t *testing.T) {
	app, rem, _ := newTestApp(t)
	ctx := context.Background()
	rem.venues = testVenues()
	app.mode.Observe(ctx, online)

	require.NoError(t, app.Refresh(ctx))
	require.True(t, app.catalog.Valid(ctx))

	require.NoError(t, app.Reset(ctx))
	assert.False(t, app.catalog.Valid(ctx))
}
