package suggestions

import (
	"context"

	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
	ListByStore(ctx context.Context, storeID, status string) ([]models.Suggestion, error)
}
