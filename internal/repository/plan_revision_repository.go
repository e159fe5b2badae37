package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// PlanRevisionRepository tracks per-employee commit revisions for optimistic concurrency.
type PlanRevisionRepository struct {
	db *sqlx.DB
}

// NewPlanRevisionRepository constructs the repository.
func NewPlanRevisionRepository(db *sqlx.DB) *PlanRevisionRepository {
	return &PlanRevisionRepository{db: db}
}

func (r *PlanRevisionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Revisions returns the current revision of each employee. Employees that were
// never committed are absent from the map.
func (r *PlanRevisionRepository) Revisions(ctx context.Context, employeeIDs []string) (map[string]int64, error) {
	return r.load(ctx, r.db, employeeIDs, false)
}

// LockRevisions reads revisions with row locks held until the transaction ends.
// Missing rows are created at revision 0 first so that concurrent first commits
// serialise on the row lock as well.
func (r *PlanRevisionRepository) LockRevisions(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string) (map[string]int64, error) {
	if len(employeeIDs) == 0 {
		return map[string]int64{}, nil
	}
	target := r.exec(exec)
	const seed = `INSERT INTO employee_plan_revisions (employee_id, revision, updated_at)
SELECT id, 0, NOW() FROM UNNEST($1::text[]) AS id
ON CONFLICT (employee_id) DO NOTHING`
	if _, err := target.ExecContext(ctx, seed, pq.Array(employeeIDs)); err != nil {
		return nil, fmt.Errorf("seed plan revisions: %w", err)
	}
	return r.load(ctx, target, employeeIDs, true)
}

// BumpRevisions increments the revision of every employee, creating rows as needed.
func (r *PlanRevisionRepository) BumpRevisions(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO employee_plan_revisions (employee_id, revision, updated_at)
SELECT id, 1, NOW() FROM UNNEST($1::text[]) AS id
ON CONFLICT (employee_id)
DO UPDATE SET revision = employee_plan_revisions.revision + 1, updated_at = EXCLUDED.updated_at`
	if _, err := r.exec(exec).ExecContext(ctx, query, pq.Array(employeeIDs)); err != nil {
		return fmt.Errorf("bump plan revisions: %w", err)
	}
	return nil
}

func (r *PlanRevisionRepository) load(ctx context.Context, target sqlx.ExtContext, employeeIDs []string, lock bool) (map[string]int64, error) {
	result := make(map[string]int64, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return result, nil
	}
	query := `SELECT employee_id, revision, updated_at FROM employee_plan_revisions WHERE employee_id = ANY($1)`
	if lock {
		query += ` FOR UPDATE`
	}
	var rows []models.EmployeePlanRevision
	if err := sqlx.SelectContext(ctx, target, &rows, query, pq.Array(employeeIDs)); err != nil {
		return nil, fmt.Errorf("load plan revisions: %w", err)
	}
	for _, row := range rows {
		result[row.EmployeeID] = row.Revision
	}
	return result, nil
}
