package searches

import (
	"context"

	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
)

type Repository interface {
	Record(ctx context.Context, deviceID, query string) error
	Recent(ctx context.Context, deviceID string, limit int) ([]models.Search, error)
}
