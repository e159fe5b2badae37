package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

// Catalog is a read-only snapshot of the employees and qualifications of a planning scope.
type Catalog struct {
	employees      map[string]models.Employee
	qualifications map[string]models.Qualification
	employeeOrder  []string
}

// NewCatalog indexes the provided records. Later duplicates overwrite earlier ones.
func NewCatalog(employees []models.Employee, qualifications []models.Qualification) *Catalog {
	c := &Catalog{
		employees:      make(map[string]models.Employee, len(employees)),
		qualifications: make(map[string]models.Qualification, len(qualifications)),
	}
	for _, q := range qualifications {
		c.qualifications[q.ID] = q
	}
	for _, e := range employees {
		if _, exists := c.employees[e.ID]; !exists {
			c.employeeOrder = append(c.employeeOrder, e.ID)
		}
		c.employees[e.ID] = e
	}
	sort.SliceStable(c.employeeOrder, func(i, j int) bool {
		a, b := c.employees[c.employeeOrder[i]], c.employees[c.employeeOrder[j]]
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ID < b.ID
	})
	return c
}

// Employee looks up an employee by id.
func (c *Catalog) Employee(id string) (models.Employee, bool) {
	e, ok := c.employees[id]
	return e, ok
}

// Qualification looks up a qualification by id.
func (c *Catalog) Qualification(id string) (models.Qualification, bool) {
	q, ok := c.qualifications[id]
	return q, ok
}

// Employees returns all employees ordered by display name.
func (c *Catalog) Employees() []models.Employee {
	out := make([]models.Employee, 0, len(c.employeeOrder))
	for _, id := range c.employeeOrder {
		out = append(out, c.employees[id])
	}
	return out
}

// Qualifications returns the active qualifications by ascending priority rank.
func (c *Catalog) Qualifications() []models.Qualification {
	out := make([]models.Qualification, 0, len(c.qualifications))
	for _, q := range c.qualifications {
		if q.Active {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityRank != out[j].PriorityRank {
			return out[i].PriorityRank < out[j].PriorityRank
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// EmployeesByID resolves ids in order, skipping ids missing from the catalog.
func (c *Catalog) EmployeesByID(ids []string) []models.Employee {
	out := make([]models.Employee, 0, len(ids))
	for _, id := range ids {
		if e, ok := c.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Placeable reports whether the employee may be put on the board.
func (c *Catalog) Placeable(id string) error {
	e, ok := c.employees[id]
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("employee %s is not part of this planning scope", id))
	}
	if !e.Active {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("employee %s is inactive", id))
	}
	return nil
}
