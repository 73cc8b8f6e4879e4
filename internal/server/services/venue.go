// Package services implements the server side of the venue API on top of
// the repositories.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/dmitrijs2005/cabinetmap/internal/dbx"
	sc "github.com/dmitrijs2005/cabinetmap/internal/server/config"
	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/cabinetmap/internal/validation"
	"github.com/google/uuid"
)

// Test seams for the AWS SDK.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
	newS3PresignClient    = func(c *s3.Client) *s3.PresignClient { return s3.NewPresignClient(c) }
)

type VenueService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	now         func() time.Time
}

func NewVenueService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *VenueService {
	return &VenueService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		now:         time.Now,
	}
}

func requireField(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", common.ErrorValidation, name)
	}
	return nil
}

// AddFavorite stars storeID and appends an "added" event in one
// transaction. Replays of the same call are harmless.
func (s *VenueService) AddFavorite(ctx context.Context, deviceID, storeID string) error {
	return s.changeFavorite(ctx, deviceID, storeID, favorites.EventAdded)
}

// RemoveFavorite unstars storeID and appends a "removed" event.
func (s *VenueService) RemoveFavorite(ctx context.Context, deviceID, storeID string) error {
	return s.changeFavorite(ctx, deviceID, storeID, favorites.EventRemoved)
}

func (s *VenueService) changeFavorite(ctx context.Context, deviceID, storeID, kind string) error {
	if err := requireField("store id", storeID); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Favorites(tx)

		var err error
		if kind == favorites.EventAdded {
			err = repo.Add(ctx, deviceID, storeID)
		} else {
			err = repo.Remove(ctx, deviceID, storeID)
		}
		if err != nil {
			return err
		}

		return repo.RecordEvent(ctx, deviceID, storeID, kind)
	})
}

func (s *VenueService) RecordSearch(ctx context.Context, deviceID, query string) error {
	if err := requireField("query", query); err != nil {
		return err
	}
	return s.repomanager.Searches(s.db).Record(ctx, deviceID, query)
}

// SubmitSuggestion validates sg, stamps it with deviceID and stores it as
// pending. It returns the server id.
func (s *VenueService) SubmitSuggestion(ctx context.Context, deviceID string, sg *models.Suggestion) (string, error) {
	sg.DeviceID = deviceID
	sg.Status = models.SuggestionPending
	if sg.CreatedAt.IsZero() {
		sg.CreatedAt = s.now()
	}

	if err := validation.Validate(sg); err != nil {
		return "", err
	}

	created, err := s.repomanager.Suggestions(s.db).Create(ctx, sg)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// ListVenues returns the full venue catalogue.
func (s *VenueService) ListVenues(ctx context.Context) ([]models.Venue, error) {
	return s.repomanager.Venues(s.db).List(ctx)
}

// GetVenue returns one venue, or common.ErrorNotFound.
func (s *VenueService) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	if err := requireField("venue id", id); err != nil {
		return nil, err
	}
	return s.repomanager.Venues(s.db).Get(ctx, strings.TrimSpace(id))
}

// PhotoStorageKey builds the object key for a new photo of storeID.
func PhotoStorageKey(storeID string, d time.Time) string {
	return fmt.Sprintf("photos/%s/%d/%02d/%02d/%v",
		url.PathEscape(storeID), d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *VenueService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignPhotoUpload returns a fresh object key for storeID and a presigned
// PUT URL for it.
func (s *VenueService) PresignPhotoUpload(ctx context.Context, storeID string) (string, string, error) {
	if err := requireField("store id", storeID); err != nil {
		return "", "", err
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := PhotoStorageKey(storeID, s.now())

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PhotoUploadExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}
