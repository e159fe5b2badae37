package models

import "time"

// DemandRule requires a number of qualification holders over a validity window.
type DemandRule struct {
	ID               string          `db:"id" json:"id"`
	UnitID           string          `db:"unit_id" json:"unit_id"`
	QualificationID  string          `db:"qualification_id" json:"qualification_id"`
	RequiredCount    int             `db:"required_count" json:"required_count"`
	ValidFrom        time.Time       `db:"valid_from" json:"valid_from"`
	ValidTo          *time.Time      `db:"valid_to" json:"valid_to,omitempty"`
	Continuous       bool            `db:"continuous" json:"continuous"`
	WeekdayPattern   *WeekdayPattern `db:"weekday_pattern" json:"weekday_pattern,omitempty"`
	ShiftRestriction *ShiftCode      `db:"shift_restriction" json:"shift_restriction,omitempty"`
	StartShift       *ShiftCode      `db:"start_shift" json:"start_shift,omitempty"`
	EndShift         *ShiftCode      `db:"end_shift" json:"end_shift,omitempty"`
}

// DemandLine is the resolved requirement for one qualification in one slot.
type DemandLine struct {
	RuleID          string `json:"rule_id"`
	QualificationID string `json:"qualification_id"`
	RequiredCount   int    `json:"required_count"`
	Label           string `json:"label"`
	PriorityRank    int    `json:"priority_rank"`
}

// ResolutionIssueKind classifies malformed rule data found while resolving.
type ResolutionIssueKind string

const (
	IssueUnknownPattern       ResolutionIssueKind = "UNKNOWN_WEEKDAY_PATTERN"
	IssueUnknownShift         ResolutionIssueKind = "UNKNOWN_SHIFT_CODE"
	IssueUnknownQualification ResolutionIssueKind = "UNKNOWN_QUALIFICATION"
)

// ResolutionIssue describes a rule that could not be evaluated exactly.
type ResolutionIssue struct {
	RuleID  string              `json:"rule_id"`
	Kind    ResolutionIssueKind `json:"kind"`
	Value   string              `json:"value"`
	Message string              `json:"message"`
}

// ResolutionError is returned when strict rule resolution meets malformed rules.
type ResolutionError struct {
	Issues []ResolutionIssue
}

func (e *ResolutionError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "rule resolution failed"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0].Message
	}
	return e.Issues[0].Message + " (and more)"
}
