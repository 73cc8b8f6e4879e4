package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cabinetmap/internal/dbx"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/searches"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/suggestions"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/venues"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Favorites(db dbx.DBTX) favorites.Repository
	Searches(db dbx.DBTX) searches.Repository
	Suggestions(db dbx.DBTX) suggestions.Repository
	Venues(db dbx.DBTX) venues.Repository
}
