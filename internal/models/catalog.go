package models

import (
	"time"

	"github.com/lib/pq"
)

// Qualification is a skill an employee may hold. Lower priority ranks are scarcer.
type Qualification struct {
	ID           string    `db:"id" json:"id"`
	Label        string    `db:"label" json:"label"`
	PriorityRank int       `db:"priority_rank" json:"priority_rank"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Employee is a plannable member of an organizational unit.
type Employee struct {
	ID               string         `db:"id" json:"id"`
	UnitID           string         `db:"unit_id" json:"unit_id"`
	DisplayName      string         `db:"display_name" json:"display_name"`
	TeamLead         bool           `db:"team_lead" json:"team_lead"`
	Active           bool           `db:"active" json:"active"`
	QualificationIDs pq.StringArray `db:"qualification_ids" json:"qualification_ids"`
}

// Holds reports whether the employee holds the qualification.
func (e Employee) Holds(qualificationID string) bool {
	for _, id := range e.QualificationIDs {
		if id == qualificationID {
			return true
		}
	}
	return false
}
