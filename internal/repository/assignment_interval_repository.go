package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// AssignmentIntervalRepository persists per-employee shift group intervals.
type AssignmentIntervalRepository struct {
	db *sqlx.DB
}

// NewAssignmentIntervalRepository constructs the repository.
func NewAssignmentIntervalRepository(db *sqlx.DB) *AssignmentIntervalRepository {
	return &AssignmentIntervalRepository{db: db}
}

func (r *AssignmentIntervalRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListOverlapping returns intervals of the employees intersecting [from, to].
func (r *AssignmentIntervalRepository) ListOverlapping(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.AssignmentInterval, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, employee_id, group_label, start_date, end_date, position, created_at
FROM assignment_intervals
WHERE employee_id = ANY($1) AND start_date <= $3 AND (end_date IS NULL OR end_date >= $2)
ORDER BY employee_id ASC, start_date ASC`
	var intervals []models.AssignmentInterval
	if err := r.db.SelectContext(ctx, &intervals, query, pq.Array(employeeIDs), from, to); err != nil {
		return nil, fmt.Errorf("list overlapping assignment intervals: %w", err)
	}
	return intervals, nil
}

// ListLongRunners locks intervals that start before horizonStart and are still
// running on or after it.
func (r *AssignmentIntervalRepository) ListLongRunners(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, horizonStart time.Time) ([]models.AssignmentInterval, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, employee_id, group_label, start_date, end_date, position, created_at
FROM assignment_intervals
WHERE employee_id = ANY($1) AND start_date < $2 AND (end_date IS NULL OR end_date >= $2)
ORDER BY employee_id ASC, start_date ASC
FOR UPDATE`
	var intervals []models.AssignmentInterval
	if err := sqlx.SelectContext(ctx, r.exec(exec), &intervals, query, pq.Array(employeeIDs), horizonStart); err != nil {
		return nil, fmt.Errorf("list long-running assignment intervals: %w", err)
	}
	return intervals, nil
}

// UpdateEndDate truncates an interval.
func (r *AssignmentIntervalRepository) UpdateEndDate(ctx context.Context, exec sqlx.ExtContext, id string, end time.Time) error {
	const query = `UPDATE assignment_intervals SET end_date = $1 WHERE id = $2`
	result, err := r.exec(exec).ExecContext(ctx, query, end, id)
	if err != nil {
		return fmt.Errorf("update assignment interval end: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assignment interval rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteStartingWithin removes the employees' intervals starting inside [from, to].
func (r *AssignmentIntervalRepository) DeleteStartingWithin(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, from, to time.Time) (int64, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM assignment_intervals WHERE employee_id = ANY($1) AND start_date BETWEEN $2 AND $3`
	result, err := r.exec(exec).ExecContext(ctx, query, pq.Array(employeeIDs), from, to)
	if err != nil {
		return 0, fmt.Errorf("delete assignment intervals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted assignment interval rows: %w", err)
	}
	return affected, nil
}

// InsertBatch inserts intervals, assigning ids and timestamps where missing.
func (r *AssignmentIntervalRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, intervals []models.AssignmentInterval) error {
	if len(intervals) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO assignment_intervals (id, employee_id, group_label, start_date, end_date, position, created_at)
VALUES (:id, :employee_id, :group_label, :start_date, :end_date, :position, :created_at)`

	for i := range intervals {
		interval := &intervals[i]
		if interval.ID == "" {
			interval.ID = uuid.NewString()
		}
		if interval.CreatedAt.IsZero() {
			interval.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, interval); err != nil {
			return fmt.Errorf("insert assignment interval: %w", err)
		}
	}
	return nil
}
