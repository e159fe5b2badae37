package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// ShiftMappingRepository persists the per-unit shift code to group label mapping.
type ShiftMappingRepository struct {
	db *sqlx.DB
}

// NewShiftMappingRepository constructs the repository.
func NewShiftMappingRepository(db *sqlx.DB) *ShiftMappingRepository {
	return &ShiftMappingRepository{db: db}
}

// Get fetches the mapping of a unit. It returns sql.ErrNoRows when none is configured.
func (r *ShiftMappingRepository) Get(ctx context.Context, unitID string) (*models.ShiftGroupMapping, error) {
	const query = `SELECT unit_id, early_label, late_label, night_label, updated_by, updated_at
FROM shift_group_mappings WHERE unit_id = $1`
	var mapping models.ShiftGroupMapping
	if err := r.db.GetContext(ctx, &mapping, query, unitID); err != nil {
		return nil, err
	}
	return &mapping, nil
}

// Upsert inserts or updates a unit's mapping.
func (r *ShiftMappingRepository) Upsert(ctx context.Context, mapping *models.ShiftGroupMapping) error {
	const query = `INSERT INTO shift_group_mappings (unit_id, early_label, late_label, night_label, updated_by, updated_at)
VALUES (:unit_id, :early_label, :late_label, :night_label, :updated_by, :updated_at)
ON CONFLICT (unit_id)
DO UPDATE SET early_label = EXCLUDED.early_label, late_label = EXCLUDED.late_label,
              night_label = EXCLUDED.night_label, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	mapping.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, mapping); err != nil {
		return fmt.Errorf("upsert shift group mapping: %w", err)
	}
	return nil
}
