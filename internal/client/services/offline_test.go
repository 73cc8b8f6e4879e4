package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/cabinetmap/internal/client/kvstore"
	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/client/outbox"
	"github.com/dmitrijs2005/cabinetmap/internal/client/reconciler"
	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMode struct{ online bool }

func (m *fakeMode) Online() bool { return m.online }

type fakeFacade struct {
	fail  bool
	calls []string
}

func (f *fakeFacade) do(call string) error {
	f.calls = append(f.calls, call)
	if f.fail {
		return errors.New("unreachable")
	}
	return nil
}

func (f *fakeFacade) AddFavorite(_ context.Context, id string) error    { return f.do("add:" + id) }
func (f *fakeFacade) RemoveFavorite(_ context.Context, id string) error { return f.do("remove:" + id) }
func (f *fakeFacade) RecordSearch(_ context.Context, q string) error    { return f.do("search:" + q) }
func (f *fakeFacade) SubmitSuggestion(_ context.Context, storeID string, s models.Suggestion) error {
	return f.do("suggest:" + storeID + ":" + string(s.Value))
}

type fakeUploader struct {
	err error
}

func (f *fakeUploader) PresignPhotoUpload(_ context.Context, storeID string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "photos/" + storeID + "/abc", "http://s3.local/put", nil
}

type fixture struct {
	svc    *OfflineService
	facade *fakeFacade
	mode   *fakeMode
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	ob := outbox.New(kvstore.NewMemoryStore(), logging.Discard())
	facade := &fakeFacade{}
	mode := &fakeMode{online: online}
	rec := reconciler.New(ob, facade, mode, logging.Discard())

	svc := NewOfflineService(ob, rec, mode, &fakeUploader{}, logging.Discard())
	svc.Initialize(context.Background())
	return &fixture{svc: svc, facade: facade, mode: mode}
}

func TestOffline_MutationsAreQueued(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFavorite(ctx, "s1"))
	require.NoError(t, f.svc.AddSearchHistory(ctx, "shinjuku"))
	_, err := f.svc.AddSuggestion(ctx, "s1", SuggestionInput{Field: "name", Value: "GiGO"})
	require.NoError(t, err)

	assert.Empty(t, f.facade.calls)
	assert.Len(t, f.svc.UnsyncedActions(), 3)
	assert.Len(t, f.svc.PendingSuggestions(), 1)
	assert.Equal(t, []string{"s1"}, f.svc.Favorites())
	assert.Equal(t, []string{"shinjuku"}, f.svc.SearchHistory())
}

func TestOnline_DeliversImmediately(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFavorite(ctx, "s1"))
	require.NoError(t, f.svc.RemoveFavorite(ctx, "s1"))
	require.NoError(t, f.svc.AddSearchHistory(ctx, "q"))
	id, err := f.svc.AddSuggestion(ctx, "s2", SuggestionInput{Field: "cabinets", Value: 6})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Equal(t, []string{"add:s1", "remove:s1", "search:q", "suggest:s2:6"}, f.facade.calls)
	assert.Empty(t, f.svc.UnsyncedActions())
	assert.Empty(t, f.svc.PendingSuggestions())
	assert.Equal(t, 0, f.svc.Stats().UnsyncedActions)
}

func TestOnline_FailureLeavesActionQueuedWithoutRevert(t *testing.T) {
	f := newFixture(t, true)
	f.facade.fail = true
	ctx := context.Background()

	require.NoError(t, f.svc.AddFavorite(ctx, "s1"))

	assert.Equal(t, []string{"s1"}, f.svc.Favorites(), "local change is kept")
	unsynced := f.svc.UnsyncedActions()
	require.Len(t, unsynced, 1)
	assert.Equal(t, models.KindAddFavorite, unsynced[0].Kind)

	f.facade.fail = false
	sum := f.svc.SyncWithServer(ctx)
	assert.Equal(t, models.SyncSummary{Success: 1}, sum)
	assert.Empty(t, f.svc.UnsyncedActions())
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	on, err := f.svc.ToggleFavorite(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, on)

	on, err = f.svc.ToggleFavorite(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, f.svc.Favorites())
}

func TestAddSuggestion_Validation(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.AddSuggestion(ctx, "s1", SuggestionInput{Field: ""})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.AddSuggestion(ctx, "", SuggestionInput{Field: "name", Value: "x"})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.AddSuggestion(ctx, "s1", SuggestionInput{Field: "name", Value: "x", Comment: strings.Repeat("c", 501)})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.AddSuggestion(ctx, "s1", SuggestionInput{Field: "name", Value: func() {}})
	assert.ErrorContains(t, err, "encode suggestion value")

	assert.Empty(t, f.svc.UnsyncedActions())
}

func TestRequiredIdentifiers(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.AddFavorite(ctx, ""), outbox.ErrEmptyStoreID)
	assert.ErrorIs(t, f.svc.RemoveFavorite(ctx, ""), outbox.ErrEmptyStoreID)
	assert.ErrorIs(t, f.svc.AddSearchHistory(ctx, ""), outbox.ErrEmptyQuery)
	assert.Empty(t, f.facade.calls)
}

func TestSyncWithServer_SkippedOffline(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFavorite(ctx, "s1"))
	assert.True(t, f.svc.SyncWithServer(ctx).Skipped)

	f.mode.online = true
	assert.Equal(t, models.SyncSummary{Success: 1}, f.svc.SyncWithServer(ctx))
}

func TestForeground_SyncsWhenStale(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFavorite(ctx, "s1"))
	f.mode.online = true
	f.svc.Foreground(ctx)

	assert.Equal(t, []string{"add:s1"}, f.facade.calls)
}

func TestResetAndSweep(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.AddFavorite(ctx, "s1"))
	assert.Equal(t, 0, f.svc.Sweep(ctx), "recent synced entries are kept")

	f.svc.Reset(ctx)
	assert.Equal(t, models.Stats{}, f.svc.Stats())
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "front.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nrest"), 0o600))
	return path
}

func TestUploadPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("offline", func(t *testing.T) {
		f := newFixture(t, false)
		_, err := f.svc.UploadPhoto(ctx, "s1", writePhoto(t))
		assert.ErrorIs(t, err, ErrOffline)
	})

	t.Run("uploads then suggests the key", func(t *testing.T) {
		f := newFixture(t, true)
		var gotURL, gotCT string
		f.svc.upload = func(_ context.Context, url, ct string, body []byte) error {
			gotURL, gotCT = url, ct
			return nil
		}

		id, err := f.svc.UploadPhoto(ctx, "s1", writePhoto(t))
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, "http://s3.local/put", gotURL)
		assert.Equal(t, "image/png", gotCT)
		assert.Equal(t, []string{`suggest:s1:"photos/s1/abc"`}, f.facade.calls)
	})

	t.Run("upload failure queues nothing", func(t *testing.T) {
		f := newFixture(t, true)
		f.svc.upload = func(context.Context, string, string, []byte) error { return errors.New("403") }

		_, err := f.svc.UploadPhoto(ctx, "s1", writePhoto(t))
		require.Error(t, err)
		assert.Empty(t, f.svc.UnsyncedActions())
	})

	t.Run("presign failure", func(t *testing.T) {
		f := newFixture(t, true)
		f.svc.photos = &fakeUploader{err: errors.New("denied")}

		_, err := f.svc.UploadPhoto(ctx, "s1", writePhoto(t))
		assert.ErrorContains(t, err, "presign upload")
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.svc.UploadPhoto(ctx, "s1", filepath.Join(t.TempDir(), "nope.png"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing store", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.svc.UploadPhoto(ctx, "", writePhoto(t))
		assert.ErrorIs(t, err, outbox.ErrEmptyStoreID)
	})
}
