// Package searches records search queries per device.
package searches

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cabinetmap/internal/dbx"
	"github.com/dmitrijs2005/cabinetmap/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, deviceID, query string) error {
	q :=
		`INSERT INTO searches (device_id, query)
		 VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, q, deviceID, query); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Recent returns up to limit searches for deviceID, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, deviceID string, limit int) ([]models.Search, error) {
	q :=
		`SELECT id, device_id, query, created_at FROM searches
		 WHERE device_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Search
	for rows.Next() {
		var s models.Search
		if err := rows.Scan(&s.ID, &s.DeviceID, &s.Query, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
