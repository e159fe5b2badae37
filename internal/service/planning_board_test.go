package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

func assertOneShiftPerWeek(t *testing.T, board *PlanningBoard) {
	t.Helper()
	for week := 0; week < board.HorizonWeeks(); week++ {
		seen := map[string]models.ShiftCode{}
		for _, code := range models.ShiftCodes {
			for _, id := range board.Cell(week, code) {
				prev, dup := seen[id]
				assert.False(t, dup, "employee %s in %s and %s of week %d", id, prev, code, week)
				seen[id] = code
			}
		}
	}
}

func TestPlanningBoardPlaceKeepsOneShiftPerWeek(t *testing.T) {
	board := NewPlanningBoard(2)
	steps := []struct {
		week  int
		shift models.ShiftCode
		id    string
	}{
		{0, models.ShiftEarly, "a"},
		{0, models.ShiftLate, "b"},
		{0, models.ShiftNight, "a"},
		{1, models.ShiftEarly, "a"},
		{0, models.ShiftNight, "b"},
		{0, models.ShiftNight, "b"},
		{1, models.ShiftLate, "a"},
	}
	for _, s := range steps {
		require.NoError(t, board.Place(s.week, s.shift, s.id))
		assertOneShiftPerWeek(t, board)
	}

	assert.Empty(t, board.Cell(0, models.ShiftEarly))
	assert.Empty(t, board.Cell(0, models.ShiftLate))
	assert.Equal(t, []string{"a", "b"}, board.Cell(0, models.ShiftNight))
	assert.Equal(t, []string{"a"}, board.Cell(1, models.ShiftLate))
	assert.Equal(t, []int{0, 1}, board.WeeksAssignedFor("a"))
	assert.Equal(t, []int{0}, board.WeeksAssignedFor("b"))
	assert.Equal(t, []string{"a", "b"}, board.Employees())
}

func TestPlanningBoardRejectsOutOfRange(t *testing.T) {
	board := NewPlanningBoard(1)

	err := board.Place(1, models.ShiftEarly, "a")
	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	assert.Error(t, board.Place(-1, models.ShiftEarly, "a"))
	assert.Error(t, board.Place(0, "MIDDAY", "a"))
	assert.Error(t, board.Place(0, models.ShiftEarly, ""))
}

func TestPlanningBoardInsertAndMove(t *testing.T) {
	board := NewPlanningBoard(1)
	require.NoError(t, board.Place(0, models.ShiftEarly, "a"))
	require.NoError(t, board.Place(0, models.ShiftEarly, "b"))
	require.NoError(t, board.Insert(0, models.ShiftEarly, "c", 0))
	assert.Equal(t, []string{"c", "a", "b"}, board.Cell(0, models.ShiftEarly))

	require.NoError(t, board.Insert(0, models.ShiftEarly, "b", 1))
	assert.Equal(t, []string{"c", "b", "a"}, board.Cell(0, models.ShiftEarly))

	from := BoardCellKey{WeekOffset: 0, Shift: models.ShiftEarly}
	to := BoardCellKey{WeekOffset: 0, Shift: models.ShiftNight}
	require.NoError(t, board.Move(from, to, "b", -1))
	assert.Equal(t, []string{"c", "a"}, board.Cell(0, models.ShiftEarly))
	assert.Equal(t, []string{"b"}, board.Cell(0, models.ShiftNight))

	err := board.Move(from, to, "b", 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assertOneShiftPerWeek(t, board)
}

func TestPlanningBoardRemove(t *testing.T) {
	board := NewPlanningBoard(1)
	require.NoError(t, board.Place(0, models.ShiftLate, "a"))

	removed, err := board.Remove(0, models.ShiftEarly, "a")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = board.Remove(0, models.ShiftLate, "a")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, board.Employees())
}

func TestPlanningBoardSnapshotRoundTrip(t *testing.T) {
	board := NewPlanningBoard(2)
	require.NoError(t, board.Place(0, models.ShiftEarly, "a"))
	require.NoError(t, board.Place(0, models.ShiftEarly, "b"))
	require.NoError(t, board.Place(1, models.ShiftNight, "a"))

	restored, err := RestoreBoard(board.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, board.Snapshot(), restored.Snapshot())

	_, err = RestoreBoard(BoardSnapshot{HorizonWeeks: 1, Cells: []BoardCellSnapshot{{WeekOffset: 3, Shift: models.ShiftEarly, EmployeeIDs: []string{"a"}}}})
	assert.Error(t, err)
}

func TestSeedBoardFromIntervals(t *testing.T) {
	mapping := models.ShiftGroupMapping{UnitID: "u1", EarlyLabel: "A", LateLabel: "B", NightLabel: "C"}
	intervals := []models.AssignmentInterval{
		{ID: "1", EmployeeID: "e1", GroupLabel: "A", StartDate: date("2024-01-01"), Position: 1},
		{ID: "2", EmployeeID: "e2", GroupLabel: "A", StartDate: date("2024-02-05"), EndDate: datePtr("2024-02-11"), Position: 0},
		{ID: "3", EmployeeID: "e1", GroupLabel: "C", StartDate: date("2024-02-14"), EndDate: datePtr("2024-02-20")},
		{ID: "4", EmployeeID: "e3", GroupLabel: "legacy", StartDate: date("2024-02-05")},
	}

	board, skipped, err := SeedBoard(date("2024-02-05"), 2, intervals, mapping)
	require.NoError(t, err)

	assert.Equal(t, []string{"e2", "e1"}, board.Cell(0, models.ShiftEarly))
	assert.Equal(t, []string{"e1"}, board.Cell(1, models.ShiftNight))
	assert.Empty(t, board.Cell(1, models.ShiftEarly))
	require.Len(t, skipped, 1)
	assert.Equal(t, "4", skipped[0].ID)
	assertOneShiftPerWeek(t, board)
}
