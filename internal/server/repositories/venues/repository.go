package venues

import (
	"context"

	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Venue, error)
	Get(ctx context.Context, id string) (*models.Venue, error)
}
