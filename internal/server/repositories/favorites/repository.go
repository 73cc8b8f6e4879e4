package favorites

import (
	"context"

	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
)

// Event kinds accepted by RecordEvent.
const (
	EventAdded   = models.EventAdded
	EventRemoved = models.EventRemoved
)

type Repository interface {
	Add(ctx context.Context, deviceID, storeID string) error
	Remove(ctx context.Context, deviceID, storeID string) error
	RecordEvent(ctx context.Context, deviceID, storeID, kind string) error
	ListByDevice(ctx context.Context, deviceID string) ([]models.Favorite, error)
}
