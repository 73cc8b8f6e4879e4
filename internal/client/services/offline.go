// Package services exposes the offline-first operations the CLI works with.
// Every mutation lands in the outbox first; when the client is online the
// queued action is also delivered immediately, and a failed delivery simply
// stays queued for the next reconciliation pass.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/cabinetmap/internal/client/models"
	"github.com/dmitrijs2005/cabinetmap/internal/client/outbox"
	"github.com/dmitrijs2005/cabinetmap/internal/client/reconciler"
	"github.com/dmitrijs2005/cabinetmap/internal/logging"
	"github.com/dmitrijs2005/cabinetmap/internal/netx"
	"github.com/dmitrijs2005/cabinetmap/internal/validation"
	"github.com/google/uuid"
)

// PhotosField is the suggestion field used for uploaded store photos.
const PhotosField = "photos"

var ErrOffline = errors.New("not available offline")

// PhotoUploader hands out presigned upload URLs.
type PhotoUploader interface {
	PresignPhotoUpload(ctx context.Context, storeID string) (key, url string, err error)
}

type OfflineService struct {
	outbox *outbox.Outbox
	rec    *reconciler.Reconciler
	mode   reconciler.Mode
	photos PhotoUploader
	logger logging.Logger
	now    func() time.Time

	upload func(ctx context.Context, url, contentType string, body []byte) error
}

func NewOfflineService(ob *outbox.Outbox, rec *reconciler.Reconciler, mode reconciler.Mode, photos PhotoUploader, logger logging.Logger) *OfflineService {
	return &OfflineService{
		outbox: ob,
		rec:    rec,
		mode:   mode,
		photos: photos,
		logger: logger.With("module", "offline_service"),
		now:    time.Now,
		upload: netx.UploadToPresignedURL,
	}
}

func (s *OfflineService) Initialize(ctx context.Context) {
	s.outbox.Initialize(ctx)
}

func (s *OfflineService) Online() bool {
	return s.mode.Online()
}

func (s *OfflineService) AddFavorite(ctx context.Context, storeID string) error {
	a, err := s.outbox.AddFavorite(ctx, storeID)
	if err != nil {
		return err
	}
	s.deliverNow(ctx, a)
	return nil
}

func (s *OfflineService) RemoveFavorite(ctx context.Context, storeID string) error {
	a, err := s.outbox.RemoveFavorite(ctx, storeID)
	if err != nil {
		return err
	}
	s.deliverNow(ctx, a)
	return nil
}

// ToggleFavorite adds or removes storeID and reports the new membership.
func (s *OfflineService) ToggleFavorite(ctx context.Context, storeID string) (bool, error) {
	if s.outbox.IsFavorite(storeID) {
		return false, s.RemoveFavorite(ctx, storeID)
	}
	return true, s.AddFavorite(ctx, storeID)
}

func (s *OfflineService) AddSearchHistory(ctx context.Context, query string) error {
	a, err := s.outbox.AddSearchHistory(ctx, query)
	if err != nil {
		return err
	}
	s.deliverNow(ctx, a)
	return nil
}

// SuggestionInput is what a user fills in to propose a change.
type SuggestionInput struct {
	Field     string
	Value     any
	Comment   string
	Anonymous bool
}

// AddSuggestion validates and queues a suggestion for storeID. It returns
// the suggestion id.
func (s *OfflineService) AddSuggestion(ctx context.Context, storeID string, in SuggestionInput) (string, error) {
	sg, err := models.NewSuggestion(in.Field, in.Value)
	if err != nil {
		return "", fmt.Errorf("encode suggestion value: %w", err)
	}
	sg.ID = uuid.NewString()
	sg.StoreID = storeID
	sg.Comment = in.Comment
	sg.Anonymous = in.Anonymous
	sg.CreatedAt = s.now()

	if err := validation.Validate(sg); err != nil {
		return "", err
	}

	a, err := s.outbox.AddSuggestion(ctx, storeID, sg)
	if err != nil {
		return "", err
	}
	s.deliverNow(ctx, a)
	return sg.ID, nil
}

// UploadPhoto uploads the file at path for storeID and queues a photos
// suggestion pointing at the stored object. Needs a connection.
func (s *OfflineService) UploadPhoto(ctx context.Context, storeID, path string) (string, error) {
	if !s.mode.Online() {
		return "", ErrOffline
	}
	if storeID == "" {
		return "", outbox.ErrEmptyStoreID
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	key, url, err := s.photos.PresignPhotoUpload(ctx, storeID)
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}

	if err := s.upload(ctx, url, http.DetectContentType(body), body); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "photo uploaded", "store", storeID, "key", key, "file", filepath.Base(path), "bytes", len(body))

	return s.AddSuggestion(ctx, storeID, SuggestionInput{Field: PhotosField, Value: key})
}

func (s *OfflineService) Favorites() []string                     { return s.outbox.Favorites() }
func (s *OfflineService) SearchHistory() []string                 { return s.outbox.SearchHistory() }
func (s *OfflineService) PendingSuggestions() []models.Suggestion { return s.outbox.PendingSuggestions() }
func (s *OfflineService) UnsyncedActions() []models.PendingAction { return s.outbox.UnsyncedActions() }
func (s *OfflineService) Stats() models.Stats                     { return s.outbox.Stats() }

// SyncWithServer runs an explicit reconciliation pass.
func (s *OfflineService) SyncWithServer(ctx context.Context) models.SyncSummary {
	return s.rec.SyncNow(ctx)
}

// Foreground signals user activity; a pass runs if the last one is stale.
func (s *OfflineService) Foreground(ctx context.Context) {
	s.rec.OnForeground(ctx)
}

func (s *OfflineService) Sweep(ctx context.Context) int {
	return s.outbox.ClearOldData(ctx)
}

func (s *OfflineService) Reset(ctx context.Context) {
	s.outbox.Reset(ctx)
}

func (s *OfflineService) deliverNow(ctx context.Context, a *models.PendingAction) {
	if a == nil || !s.mode.Online() {
		return
	}
	err := s.rec.Deliver(ctx, *a)
	switch {
	case errors.Is(err, reconciler.ErrEntryInFlight):
		s.logger.Debug(ctx, "action already being sent by a sync pass", "id", a.ID)
	case err != nil:
		s.logger.Warn(ctx, "immediate delivery failed, left queued", "id", a.ID, "kind", a.Kind, "error", err)
	}
}
