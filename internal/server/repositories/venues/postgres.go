// Package venues reads the arcade listings served to clients.
package venues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/cabinetmap/internal/common"
	"github.com/dmitrijs2005/cabinetmap/internal/dbx"
	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
)

const columns = `id, name, address, latitude, longitude, cabinets, versions, facilities,
		        business_hours, special_notice, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVenue(row scanner) (models.Venue, error) {
	var (
		v                           models.Venue
		versions, facilities, hours []byte
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude, &v.Cabinets,
		&versions, &facilities, &hours, &v.SpecialNotice, &v.UpdatedAt); err != nil {
		return v, err
	}

	if err := json.Unmarshal(versions, &v.Versions); err != nil {
		return v, fmt.Errorf("venue %s versions: %w", v.ID, err)
	}
	if err := json.Unmarshal(facilities, &v.Facilities); err != nil {
		return v, fmt.Errorf("venue %s facilities: %w", v.ID, err)
	}
	if err := json.Unmarshal(hours, &v.BusinessHours); err != nil {
		return v, fmt.Errorf("venue %s business hours: %w", v.ID, err)
	}
	return v, nil
}

// List returns every venue ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Venue, error) {
	query := `SELECT ` + columns + ` FROM venues ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Venue, error) {
	query := `SELECT ` + columns + ` FROM venues WHERE id = $1`

	v, err := scanVenue(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &v, nil
}
