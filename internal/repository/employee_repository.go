package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// EmployeeRepository reads plannable employees together with their qualifications.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs the repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListByUnit returns every employee of a unit with aggregated qualification ids.
func (r *EmployeeRepository) ListByUnit(ctx context.Context, unitID string) ([]models.Employee, error) {
	const query = `
SELECT e.id, e.unit_id, e.display_name, e.team_lead, e.active,
       COALESCE(array_agg(eq.qualification_id ORDER BY eq.qualification_id) FILTER (WHERE eq.qualification_id IS NOT NULL), '{}') AS qualification_ids
FROM employees e
LEFT JOIN employee_qualifications eq ON eq.employee_id = e.id
WHERE e.unit_id = $1
GROUP BY e.id, e.unit_id, e.display_name, e.team_lead, e.active
ORDER BY e.display_name ASC`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, unitID); err != nil {
		return nil, fmt.Errorf("list employees by unit: %w", err)
	}
	return employees, nil
}
