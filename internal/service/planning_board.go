package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

// BoardCellKey addresses one cell of the planning board.
type BoardCellKey struct {
	WeekOffset int              `json:"week_offset"`
	Shift      models.ShiftCode `json:"shift"`
}

// PlanningBoard is the weekly grid of placed employees for a planning session.
// An employee appears in at most one cell per week offset.
type PlanningBoard struct {
	horizonWeeks int
	cells        map[BoardCellKey][]string
}

// BoardCellSnapshot is the serialisable form of a single board cell.
type BoardCellSnapshot struct {
	WeekOffset  int              `json:"week_offset"`
	Shift       models.ShiftCode `json:"shift"`
	EmployeeIDs []string         `json:"employee_ids"`
}

// BoardSnapshot is the serialisable form of a planning board.
type BoardSnapshot struct {
	HorizonWeeks int                 `json:"horizon_weeks"`
	Cells        []BoardCellSnapshot `json:"cells"`
}

// NewPlanningBoard creates an empty board spanning horizonWeeks weeks.
func NewPlanningBoard(horizonWeeks int) *PlanningBoard {
	return &PlanningBoard{
		horizonWeeks: horizonWeeks,
		cells:        make(map[BoardCellKey][]string),
	}
}

// HorizonWeeks returns the number of weeks on the board.
func (b *PlanningBoard) HorizonWeeks() int {
	return b.horizonWeeks
}

// Place moves employeeID into the target cell, clearing it from every other cell of
// the same week. Placing an employee already in the cell keeps its position.
func (b *PlanningBoard) Place(weekOffset int, shift models.ShiftCode, employeeID string) error {
	return b.Insert(weekOffset, shift, employeeID, -1)
}

// Insert behaves like Place but inserts at position. A negative or out of range
// position appends.
func (b *PlanningBoard) Insert(weekOffset int, shift models.ShiftCode, employeeID string, position int) error {
	key, err := b.key(weekOffset, shift)
	if err != nil {
		return err
	}
	if employeeID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "employee id is required")
	}
	if position < 0 && b.indexOf(key, employeeID) >= 0 {
		return nil
	}
	for _, code := range models.ShiftCodes {
		b.removeFrom(BoardCellKey{WeekOffset: weekOffset, Shift: code}, employeeID)
	}
	cell := b.cells[key]
	if position < 0 || position >= len(cell) {
		b.cells[key] = append(cell, employeeID)
		return nil
	}
	cell = append(cell, "")
	copy(cell[position+1:], cell[position:])
	cell[position] = employeeID
	b.cells[key] = cell
	return nil
}

// Move removes employeeID from the source cell and inserts it into the target cell.
func (b *PlanningBoard) Move(from, to BoardCellKey, employeeID string, position int) error {
	if _, err := b.key(from.WeekOffset, from.Shift); err != nil {
		return err
	}
	if _, err := b.key(to.WeekOffset, to.Shift); err != nil {
		return err
	}
	if b.indexOf(from, employeeID) < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("employee %s is not placed in week %d %s", employeeID, from.WeekOffset, from.Shift))
	}
	b.removeFrom(from, employeeID)
	return b.Insert(to.WeekOffset, to.Shift, employeeID, position)
}

// Remove deletes employeeID from exactly one cell. It reports whether the
// employee was present.
func (b *PlanningBoard) Remove(weekOffset int, shift models.ShiftCode, employeeID string) (bool, error) {
	key, err := b.key(weekOffset, shift)
	if err != nil {
		return false, err
	}
	return b.removeFrom(key, employeeID), nil
}

// Cell returns a copy of the ordered employee ids in a cell.
func (b *PlanningBoard) Cell(weekOffset int, shift models.ShiftCode) []string {
	cell := b.cells[BoardCellKey{WeekOffset: weekOffset, Shift: shift}]
	out := make([]string, len(cell))
	copy(out, cell)
	return out
}

// WeeksAssignedFor returns the sorted week offsets at which the employee is placed.
func (b *PlanningBoard) WeeksAssignedFor(employeeID string) []int {
	weeks := make([]int, 0)
	seen := make(map[int]struct{})
	for key, cell := range b.cells {
		for _, id := range cell {
			if id != employeeID {
				continue
			}
			if _, ok := seen[key.WeekOffset]; !ok {
				seen[key.WeekOffset] = struct{}{}
				weeks = append(weeks, key.WeekOffset)
			}
		}
	}
	sort.Ints(weeks)
	return weeks
}

// Employees returns the sorted set of employees placed anywhere on the board.
func (b *PlanningBoard) Employees() []string {
	set := make(map[string]struct{})
	for _, cell := range b.cells {
		for _, id := range cell {
			set[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Snapshot exports the board in week, shift order. Empty cells are omitted.
func (b *PlanningBoard) Snapshot() BoardSnapshot {
	snap := BoardSnapshot{HorizonWeeks: b.horizonWeeks, Cells: make([]BoardCellSnapshot, 0, len(b.cells))}
	for week := 0; week < b.horizonWeeks; week++ {
		for _, code := range models.ShiftCodes {
			cell := b.Cell(week, code)
			if len(cell) == 0 {
				continue
			}
			snap.Cells = append(snap.Cells, BoardCellSnapshot{WeekOffset: week, Shift: code, EmployeeIDs: cell})
		}
	}
	return snap
}

// RestoreBoard rebuilds a board from a snapshot through Place so the weekly
// invariant holds even for hand-edited snapshots.
func RestoreBoard(snap BoardSnapshot) (*PlanningBoard, error) {
	board := NewPlanningBoard(snap.HorizonWeeks)
	for _, cell := range snap.Cells {
		for _, id := range cell.EmployeeIDs {
			if err := board.Place(cell.WeekOffset, cell.Shift, id); err != nil {
				return nil, err
			}
		}
	}
	return board, nil
}

// SeedBoard rebuilds a board from persisted intervals intersecting each horizon
// week. Intervals whose group label is not mapped are returned as skipped.
func SeedBoard(horizonStart time.Time, horizonWeeks int, intervals []models.AssignmentInterval, mapping models.ShiftGroupMapping) (*PlanningBoard, []models.AssignmentInterval, error) {
	board := NewPlanningBoard(horizonWeeks)

	ordered := make([]models.AssignmentInterval, len(intervals))
	copy(ordered, intervals)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].StartDate.Equal(ordered[j].StartDate) {
			return ordered[i].StartDate.Before(ordered[j].StartDate)
		}
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].EmployeeID < ordered[j].EmployeeID
	})

	type placement struct {
		shift    models.ShiftCode
		position int
	}
	var skipped []models.AssignmentInterval
	winners := make(map[int]map[string]placement)
	for _, interval := range ordered {
		shift, ok := mapping.ShiftFor(interval.GroupLabel)
		if !ok {
			skipped = append(skipped, interval)
			continue
		}
		for week := 0; week < horizonWeeks; week++ {
			from, to := weekBounds(horizonStart, week)
			if !interval.Covers(from, to) {
				continue
			}
			if winners[week] == nil {
				winners[week] = make(map[string]placement)
			}
			// ordered by start date, so the latest interval in a week wins
			winners[week][interval.EmployeeID] = placement{shift: shift, position: interval.Position}
		}
	}

	for week := 0; week < horizonWeeks; week++ {
		employees := make([]string, 0, len(winners[week]))
		for id := range winners[week] {
			employees = append(employees, id)
		}
		sort.Slice(employees, func(i, j int) bool {
			pi, pj := winners[week][employees[i]], winners[week][employees[j]]
			if pi.position != pj.position {
				return pi.position < pj.position
			}
			return employees[i] < employees[j]
		})
		for _, id := range employees {
			if err := board.Place(week, winners[week][id].shift, id); err != nil {
				return nil, nil, err
			}
		}
	}
	return board, skipped, nil
}

func (b *PlanningBoard) key(weekOffset int, shift models.ShiftCode) (BoardCellKey, error) {
	if weekOffset < 0 || weekOffset >= b.horizonWeeks {
		return BoardCellKey{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week offset %d outside horizon of %d weeks", weekOffset, b.horizonWeeks))
	}
	if !shift.Valid() {
		return BoardCellKey{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift code %q", shift))
	}
	return BoardCellKey{WeekOffset: weekOffset, Shift: shift}, nil
}

func (b *PlanningBoard) indexOf(key BoardCellKey, employeeID string) int {
	for i, id := range b.cells[key] {
		if id == employeeID {
			return i
		}
	}
	return -1
}

func (b *PlanningBoard) removeFrom(key BoardCellKey, employeeID string) bool {
	idx := b.indexOf(key, employeeID)
	if idx < 0 {
		return false
	}
	cell := b.cells[key]
	cell = append(cell[:idx], cell[idx+1:]...)
	if len(cell) == 0 {
		delete(b.cells, key)
	} else {
		b.cells[key] = cell
	}
	return true
}
