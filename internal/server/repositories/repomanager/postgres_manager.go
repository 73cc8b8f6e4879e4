// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/cabinetmap/internal/dbx"
	"github.com/dmitrijs2005/cabinetmap/internal/server/migrations"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/searches"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/suggestions"
	"github.com/dmitrijs2005/cabinetmap/internal/server/repositories/venues"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Favorites(db dbx.DBTX) favorites.Repository {
	return favorites.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Searches(db dbx.DBTX) searches.Repository {
	return searches.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Suggestions(db dbx.DBTX) suggestions.Repository {
	return suggestions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Venues(db dbx.DBTX) venues.Repository {
	return venues.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
