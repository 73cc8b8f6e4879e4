package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/catalog"
	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/client/services"
)

func (a *App) Fav(ctx context.Context, storeID string) error {
	if err := a.svc.AddFavorite(ctx, storeID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s to favorites\n", storeID)
	return nil
}

func (a *App) Unfav(ctx context.Context, storeID string) error {
	if err := a.svc.RemoveFavorite(ctx, storeID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s from favorites\n", storeID)
	return nil
}

func (a *App) Favs(ctx context.Context) error {
	favs := a.svc.Favorites()
	if len(favs) == 0 {
		fmt.Fprintln(a.out, "No favorites yet")
		return nil
	}
	for _, id := range favs {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

// Search records query in the history and lists the matching venues from
// the catalogue, which works offline from the cached copy.
func (a *App) Search(ctx context.Context, query string) error {
	if err := a.svc.AddSearchHistory(ctx, query); err != nil {
		return err
	}

	err := a.Venues(ctx, catalog.Filter{Keyword: query})
	if errors.Is(err, catalog.ErrNoCachedVenues) {
		fmt.Fprintln(a.out, "Search recorded; no venues cached yet")
		return nil
	}
	return err
}

// Venues lists the catalogue entries matching f.
func (a *App) Venues(ctx context.Context, f catalog.Filter) error {
	l, err := a.catalog.Venues(ctx)
	if err != nil {
		return err
	}
	a.printListing(l, catalog.Apply(l.Venues, f, a.svc.Favorites(), a.now()))
	return nil
}

// Refresh downloads the catalogue now, ignoring the cache validity window.
func (a *App) Refresh(ctx context.Context) error {
	l, err := a.catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	if l.Cached {
		fmt.Fprintf(a.out, "Server unreachable, keeping %d cached venues\n", len(l.Venues))
		return nil
	}
	fmt.Fprintf(a.out, "Downloaded %d venues\n", len(l.Venues))
	return nil
}

func (a *App) printListing(l catalog.Listing, venues []models.Venue) {
	if len(venues) == 0 {
		fmt.Fprintln(a.out, "No venues match")
	}
	for _, v := range venues {
		fmt.Fprintf(a.out, "%-10s %-32s %2d cab  %s\n", v.ID, v.Name, v.Cabinets, v.Address)
	}
	if l.Cached {
		fmt.Fprintf(a.out, "(cached %s)\n", l.FetchedAt.Local().Format(time.DateTime))
	}
}

// Venue shows one venue in detail.
func (a *App) Venue(ctx context.Context, id string) error {
	v, cached, err := a.catalog.Venue(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:          %s\n", v.ID)
	fmt.Fprintf(a.out, "Name:        %s\n", v.Name)
	fmt.Fprintf(a.out, "Address:     %s\n", v.Address)
	fmt.Fprintf(a.out, "Cabinets:    %d\n", v.Cabinets)
	fmt.Fprintf(a.out, "Versions:    %s\n", strings.Join(v.Versions, ", "))
	fmt.Fprintf(a.out, "Facilities:  %s\n", strings.Join(v.Facilities, ", "))
	fmt.Fprintf(a.out, "Open now:    %s\n", yesNo(v.OpenAt(a.now())))
	fmt.Fprintf(a.out, "Favorite:    %s\n", yesNo(slices.Contains(a.svc.Favorites(), v.ID)))
	if v.SpecialNotice != "" {
		fmt.Fprintf(a.out, "Notice:      %s\n", v.SpecialNotice)
	}
	if cached {
		fmt.Fprintln(a.out, "(from cache)")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) History(ctx context.Context) error {
	for i, q := range a.svc.SearchHistory() {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, q)
	}
	return nil
}

// Suggest queues an edit. A value that parses as JSON (numbers, booleans,
// arrays) is kept as such; anything else is sent as a string.
func (a *App) Suggest(ctx context.Context, storeID, field, value, comment string) error {
	in := services.SuggestionInput{Field: field, Value: value, Comment: comment}
	if json.Valid([]byte(value)) {
		in.Value = json.RawMessage(value)
	}

	id, err := a.svc.AddSuggestion(ctx, storeID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Suggestion %s queued\n", id)
	return nil
}

func (a *App) Photo(ctx context.Context, storeID, path string) error {
	id, err := a.svc.UploadPhoto(ctx, storeID, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Photo uploaded, suggestion %s queued\n", id)
	return nil
}

func (a *App) Pending(ctx context.Context) error {
	actions := a.svc.UnsyncedActions()
	if len(actions) == 0 {
		fmt.Fprintln(a.out, "Nothing pending")
	}
	for _, p := range actions {
		fmt.Fprintf(a.out, "%s  %-15s %-20s %s\n",
			p.CreatedAt.Local().Format(time.DateTime), p.Kind, actionTarget(p), p.ID)
	}

	for _, s := range a.svc.PendingSuggestions() {
		fmt.Fprintf(a.out, "suggestion %s: %s.%s = %s\n", s.ID, s.StoreID, s.Field, string(s.Value))
	}
	return nil
}

func actionTarget(p models.PendingAction) string {
	if p.Kind == models.KindRecordSearch {
		return fmt.Sprintf("%q", p.Data.Query)
	}
	return p.Data.StoreID
}

func (a *App) Stats(ctx context.Context) error {
	st := a.svc.Stats()

	lastSync := "never"
	if st.LastSync != nil {
		lastSync = st.LastSync.Local().Format(time.DateTime)
	}

	fmt.Fprintf(a.out, "Mode:                %s\n", a.mode.Mode())
	fmt.Fprintf(a.out, "Last sync:           %s\n", lastSync)
	fmt.Fprintf(a.out, "Queued actions:      %d (%d unsynced)\n", st.TotalActions, st.UnsyncedActions)
	fmt.Fprintf(a.out, "Favorites:           %d\n", st.Favorites)
	fmt.Fprintf(a.out, "Search history:      %d\n", st.SearchHistory)
	fmt.Fprintf(a.out, "Pending suggestions: %d\n", st.PendingSuggestions)
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	sum := a.svc.SyncWithServer(ctx)
	if sum.Skipped {
		fmt.Fprintln(a.out, "Sync skipped (offline or already running)")
		return nil
	}
	fmt.Fprintf(a.out, "Synced: %d ok, %d failed\n", sum.Success, sum.Failed)
	return nil
}

func (a *App) Sweep(ctx context.Context) error {
	fmt.Fprintf(a.out, "Removed %d old entries\n", a.svc.Sweep(ctx))
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	a.svc.Reset(ctx)
	if err := a.catalog.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Offline data cleared")
	return nil
}
