package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// DemandResolution holds the ordered demand lines for a slot and any rules that
// were evaluated leniently.
type DemandResolution struct {
	Lines  []models.DemandLine      `json:"lines"`
	Issues []models.ResolutionIssue `json:"issues,omitempty"`
}

// DemandResolver evaluates demand rules for a (date, shift) slot.
type DemandResolver struct {
	qualifications map[string]models.Qualification
	failOpen       bool
}

// NewDemandResolver builds a resolver over the qualification catalog. When failOpen
// is set, malformed rules are treated as always matching instead of failing.
func NewDemandResolver(qualifications []models.Qualification, failOpen bool) *DemandResolver {
	index := make(map[string]models.Qualification, len(qualifications))
	for _, q := range qualifications {
		index[q.ID] = q
	}
	return &DemandResolver{qualifications: index, failOpen: failOpen}
}

// Resolve returns the demand lines required at date for the given shift.
func (r *DemandResolver) Resolve(date time.Time, shift models.ShiftCode, rules []models.DemandRule) (DemandResolution, error) {
	if !shift.Valid() {
		return DemandResolution{}, fmt.Errorf("unknown shift code %q", shift)
	}
	date = dateOnly(date)

	var (
		issues     []models.ResolutionIssue
		bounded    []models.DemandRule
		continuous []models.DemandRule
	)
	for _, rule := range rules {
		if !withinWindow(rule, date) {
			continue
		}
		ok, ruleIssues := r.ruleApplies(rule, date, shift)
		issues = append(issues, ruleIssues...)
		if !ok {
			continue
		}
		if rule.Continuous {
			continuous = append(continuous, rule)
		} else {
			bounded = append(bounded, rule)
		}
	}

	survivors := continuous
	if len(bounded) > 0 {
		survivors = bounded
	}

	lines := make([]models.DemandLine, 0, len(survivors))
	for _, rule := range survivors {
		line := models.DemandLine{
			RuleID:          rule.ID,
			QualificationID: rule.QualificationID,
			RequiredCount:   rule.RequiredCount,
			Label:           rule.QualificationID,
			PriorityRank:    maxPriorityRank,
		}
		if q, ok := r.qualifications[rule.QualificationID]; ok {
			line.Label = q.Label
			line.PriorityRank = q.PriorityRank
		} else {
			issues = append(issues, models.ResolutionIssue{
				RuleID:  rule.ID,
				Kind:    models.IssueUnknownQualification,
				Value:   rule.QualificationID,
				Message: fmt.Sprintf("rule %s references unknown qualification %s", rule.ID, rule.QualificationID),
			})
		}
		lines = append(lines, line)
	}
	sortDemandLines(lines)

	if len(issues) > 0 && !r.failOpen {
		return DemandResolution{}, &models.ResolutionError{Issues: issues}
	}
	return DemandResolution{Lines: lines, Issues: issues}, nil
}

const maxPriorityRank = int(^uint32(0) >> 1)

func withinWindow(rule models.DemandRule, date time.Time) bool {
	if dateOnly(rule.ValidFrom).After(date) {
		return false
	}
	if rule.ValidTo != nil && date.After(dateOnly(*rule.ValidTo)) {
		return false
	}
	return true
}

// ruleApplies runs the pattern, boundary and restriction filters. Unknown enum
// values yield an issue and count as matching for that filter.
func (r *DemandResolver) ruleApplies(rule models.DemandRule, date time.Time, shift models.ShiftCode) (bool, []models.ResolutionIssue) {
	var issues []models.ResolutionIssue

	if rule.Continuous && rule.WeekdayPattern != nil {
		allowed, known := patternAllows(*rule.WeekdayPattern, date.Weekday(), shift)
		if !known {
			issues = append(issues, models.ResolutionIssue{
				RuleID:  rule.ID,
				Kind:    models.IssueUnknownPattern,
				Value:   string(*rule.WeekdayPattern),
				Message: fmt.Sprintf("rule %s has unknown weekday pattern %q", rule.ID, *rule.WeekdayPattern),
			})
		} else if !allowed {
			return false, issues
		}
	}

	if !rule.Continuous {
		ok, boundaryIssues := boundaryAllows(rule, date, shift)
		issues = append(issues, boundaryIssues...)
		if !ok {
			return false, issues
		}
	}

	if rule.ShiftRestriction != nil {
		restriction := *rule.ShiftRestriction
		if !restriction.Valid() {
			issues = append(issues, unknownShiftIssue(rule.ID, "shift restriction", restriction))
		} else if restriction != shift {
			return false, issues
		}
	}
	return true, issues
}

func boundaryAllows(rule models.DemandRule, date time.Time, shift models.ShiftCode) (bool, []models.ResolutionIssue) {
	var issues []models.ResolutionIssue
	idx := shift.Index()

	if rule.StartShift != nil && date.Equal(dateOnly(rule.ValidFrom)) {
		if start := rule.StartShift.Index(); start < 0 {
			issues = append(issues, unknownShiftIssue(rule.ID, "start shift", *rule.StartShift))
		} else if idx < start {
			return false, issues
		}
	}
	if rule.EndShift != nil && rule.ValidTo != nil && date.Equal(dateOnly(*rule.ValidTo)) {
		if end := rule.EndShift.Index(); end < 0 {
			issues = append(issues, unknownShiftIssue(rule.ID, "end shift", *rule.EndShift))
		} else if idx > end {
			return false, issues
		}
	}
	return true, issues
}

func unknownShiftIssue(ruleID, field string, code models.ShiftCode) models.ResolutionIssue {
	return models.ResolutionIssue{
		RuleID:  ruleID,
		Kind:    models.IssueUnknownShift,
		Value:   string(code),
		Message: fmt.Sprintf("rule %s has unknown %s %q", ruleID, field, code),
	}
}

var (
	allShifts      = []models.ShiftCode{models.ShiftEarly, models.ShiftLate, models.ShiftNight}
	earlyOnly      = []models.ShiftCode{models.ShiftEarly}
	earlyAndLate   = []models.ShiftCode{models.ShiftEarly, models.ShiftLate}
	nightOnly      = []models.ShiftCode{models.ShiftNight}
	patternWeekday = map[models.WeekdayPattern]func(time.Weekday) []models.ShiftCode{
		models.PatternMonFri: func(d time.Weekday) []models.ShiftCode {
			if isWorkday(d) {
				return allShifts
			}
			return nil
		},
		models.PatternMonSatAll: func(d time.Weekday) []models.ShiftCode {
			if isWorkday(d) || d == time.Saturday {
				return allShifts
			}
			return nil
		},
		models.PatternMonFriSatEarly: func(d time.Weekday) []models.ShiftCode {
			switch {
			case isWorkday(d):
				return allShifts
			case d == time.Saturday:
				return earlyOnly
			}
			return nil
		},
		models.PatternMonFriSatNoNight: func(d time.Weekday) []models.ShiftCode {
			switch {
			case isWorkday(d):
				return allShifts
			case d == time.Saturday:
				return earlyAndLate
			}
			return nil
		},
		models.PatternSunFri: func(d time.Weekday) []models.ShiftCode {
			switch d {
			case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
				return allShifts
			case time.Friday:
				return earlyAndLate
			case time.Sunday:
				return nightOnly
			}
			return nil
		},
	}
)

func isWorkday(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}

// patternAllows reports whether the pattern permits shift on weekday. The second
// result is false for patterns outside the table.
func patternAllows(pattern models.WeekdayPattern, weekday time.Weekday, shift models.ShiftCode) (bool, bool) {
	fn, ok := patternWeekday[pattern]
	if !ok {
		return true, false
	}
	for _, code := range fn(weekday) {
		if code == shift {
			return true, true
		}
	}
	return false, true
}

func sortDemandLines(lines []models.DemandLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].PriorityRank != lines[j].PriorityRank {
			return lines[i].PriorityRank < lines[j].PriorityRank
		}
		if lines[i].QualificationID != lines[j].QualificationID {
			return lines[i].QualificationID < lines[j].QualificationID
		}
		return lines[i].RuleID < lines[j].RuleID
	})
}
