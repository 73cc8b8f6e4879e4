// Package suggestions persists user-submitted store edits awaiting
// moderation.
package suggestions

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

// Create inserts s and fills in its server id. Resubmitting the same
// (device_id, client_id) returns the existing row's id, so retried
// submissions are not duplicated.
func (r *PostgresRepository) Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	query :=
		`INSERT INTO suggestions (client_id, device_id, store_id, field, value, comment, anonymous, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (device_id, client_id) DO UPDATE SET client_id = EXCLUDED.client_id
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		s.ClientID, s.DeviceID, s.StoreID, s.Field, s.Value, s.Comment, s.Anonymous, s.Status, s.CreatedAt).
		Scan(&s.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) ListByStore(ctx context.Context, storeID, status string) ([]models.Suggestion, error) {
	query :=
		`SELECT id, client_id, device_id, store_id, field, value, comment, anonymous, status, created_at
		 FROM suggestions
		 WHERE store_id = $1 AND status = $2
		 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, storeID, status)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Suggestion
	for rows.Next() {
		var s models.Suggestion
		if err := rows.Scan(&s.ID, &s.ClientID, &s.DeviceID, &s.StoreID, &s.Field, &s.Value,
			&s.Comment, &s.Anonymous, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
