package models

import "time"

// AssignmentInterval places an employee in a shift group for a date range.
// A nil EndDate means the interval is open-ended.
type AssignmentInterval struct {
	ID         string     `db:"id" json:"id"`
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	GroupLabel string     `db:"group_label" json:"group_label"`
	StartDate  time.Time  `db:"start_date" json:"start_date"`
	EndDate    *time.Time `db:"end_date" json:"end_date,omitempty"`
	Position   int        `db:"position" json:"position"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Covers reports whether the interval overlaps the inclusive range [from, to].
func (a AssignmentInterval) Covers(from, to time.Time) bool {
	if DateOnly(a.StartDate).After(DateOnly(to)) {
		return false
	}
	return a.EndDate == nil || !DateOnly(*a.EndDate).Before(DateOnly(from))
}

// DateOnly drops the clock part of t so dates compare by calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EmployeePlanRevision tracks how often an employee's assignments were committed.
type EmployeePlanRevision struct {
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Revision   int64     `db:"revision" json:"revision"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DayOverride replaces an employee's effective shift on a single date.
// A nil ShiftCode means the employee is off that day.
type DayOverride struct {
	EmployeeID string     `db:"employee_id" json:"employee_id"`
	Date       time.Time  `db:"override_date" json:"date"`
	ShiftCode  *ShiftCode `db:"shift_code" json:"shift_code,omitempty"`
}
