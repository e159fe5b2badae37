package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// DayOverrideRepository reads single-day shift overrides maintained by other tooling.
type DayOverrideRepository struct {
	db *sqlx.DB
}

// NewDayOverrideRepository constructs the repository.
func NewDayOverrideRepository(db *sqlx.DB) *DayOverrideRepository {
	return &DayOverrideRepository{db: db}
}

// ListForEmployees returns overrides of the given employees between from and to inclusive.
func (r *DayOverrideRepository) ListForEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.DayOverride, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT employee_id, override_date, shift_code
FROM day_overrides
WHERE employee_id = ANY($1) AND override_date BETWEEN $2 AND $3
ORDER BY override_date ASC, employee_id ASC`
	var overrides []models.DayOverride
	if err := r.db.SelectContext(ctx, &overrides, query, pq.Array(employeeIDs), from, to); err != nil {
		return nil, fmt.Errorf("list day overrides: %w", err)
	}
	return overrides, nil
}
