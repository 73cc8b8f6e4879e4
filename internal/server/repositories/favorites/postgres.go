// Package favorites stores starred stores per device together with an
// append-only event trail.
package favorites

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

// Add stars storeID for deviceID. Adding an existing favorite is a no-op.
func (r *PostgresRepository) Add(ctx context.Context, deviceID, storeID string) error {
	query :=
		`INSERT INTO favorites (device_id, store_id)
		 VALUES ($1, $2)
		 ON CONFLICT (device_id, store_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, deviceID, storeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Remove unstars storeID. Removing a missing favorite is a no-op.
func (r *PostgresRepository) Remove(ctx context.Context, deviceID, storeID string) error {
	query :=
		`DELETE FROM favorites
		 WHERE device_id = $1 AND store_id = $2`

	if _, err := r.db.ExecContext(ctx, query, deviceID, storeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecordEvent(ctx context.Context, deviceID, storeID, kind string) error {
	query :=
		`INSERT INTO favorite_events (device_id, store_id, kind)
		 VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, deviceID, storeID, kind); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByDevice(ctx context.Context, deviceID string) ([]models.Favorite, error) {
	query :=
		`SELECT device_id, store_id, created_at FROM favorites
		 WHERE device_id = $1
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Favorite
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.DeviceID, &f.StoreID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
