package dto

import (
	"time"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// DateLayout is the calendar date format accepted and returned by the planning API.
const DateLayout = "2006-01-02"

// OpenSessionRequest opens a planning horizon for a unit.
type OpenSessionRequest struct {
	UnitID       string `json:"unitId" validate:"required"`
	HorizonStart string `json:"horizonStart" validate:"required,datetime=2006-01-02"`
	Weeks        int    `json:"weeks" validate:"required,min=1"`
}

// BoardCellRef addresses a cell of the planning board.
type BoardCellRef struct {
	WeekOffset int    `json:"weekOffset" validate:"min=0"`
	Shift      string `json:"shift" validate:"required,oneof=EARLY LATE NIGHT"`
}

// PlaceEmployeeRequest puts an employee into a cell. Position is optional; when
// omitted the employee is appended.
type PlaceEmployeeRequest struct {
	BoardCellRef
	EmployeeID string `json:"employeeId" validate:"required"`
	Position   *int   `json:"position,omitempty" validate:"omitempty,min=0"`
}

// MoveEmployeeRequest relocates an employee between two cells.
type MoveEmployeeRequest struct {
	From       BoardCellRef `json:"from"`
	To         BoardCellRef `json:"to"`
	EmployeeID string       `json:"employeeId" validate:"required"`
	Position   *int         `json:"position,omitempty" validate:"omitempty,min=0"`
}

// RemoveEmployeeRequest clears an employee from one cell.
type RemoveEmployeeRequest struct {
	BoardCellRef
	EmployeeID string `json:"employeeId" validate:"required"`
}

// BoardEmployee is an employee as rendered inside a board cell.
type BoardEmployee struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	TeamLead    bool   `json:"teamLead"`
}

// BoardCellView is one rendered cell of the board.
type BoardCellView struct {
	WeekOffset int             `json:"weekOffset"`
	WeekStart  string          `json:"weekStart"`
	Shift      string          `json:"shift"`
	GroupLabel string          `json:"groupLabel,omitempty"`
	Employees  []BoardEmployee `json:"employees"`
}

// PlanningSessionResponse describes an open planning session.
type PlanningSessionResponse struct {
	ID               string                      `json:"id"`
	UnitID           string                      `json:"unitId"`
	HorizonStart     string                      `json:"horizonStart"`
	HorizonEnd       string                      `json:"horizonEnd"`
	Weeks            int                         `json:"weeks"`
	MappingComplete  bool                        `json:"mappingComplete"`
	Cells            []BoardCellView             `json:"cells"`
	Employees        []models.Employee           `json:"employees"`
	Qualifications   []models.Qualification      `json:"qualifications"`
	SkippedIntervals []models.AssignmentInterval `json:"skippedIntervals,omitempty"`
	ExpiresAt        time.Time                   `json:"expiresAt"`
}

// SlotCoverage is the verdict for a single date and shift.
type SlotCoverage struct {
	Date       string                   `json:"date"`
	WeekOffset int                      `json:"weekOffset"`
	Shift      string                   `json:"shift"`
	Status     models.CoverageStatus    `json:"status"`
	Shortfall  int                      `json:"shortfall"`
	Employees  []string                 `json:"employees"`
	Lines      []models.LineCoverage    `json:"lines"`
	Issues     []models.ResolutionIssue `json:"issues,omitempty"`
}

// CoverageResponse lists verdicts for every slot of the horizon.
type CoverageResponse struct {
	SessionID string         `json:"sessionId"`
	Slots     []SlotCoverage `json:"slots"`
	Uncovered int            `json:"uncovered"`
}

// CommitResponse reports the outcome of a commit.
type CommitResponse struct {
	SessionID         string                      `json:"sessionId"`
	AffectedEmployees []string                    `json:"affectedEmployees"`
	Truncated         int                         `json:"truncated"`
	Continuations     int                         `json:"continuations"`
	Deleted           int64                       `json:"deleted"`
	Inserted          int                         `json:"inserted"`
	Intervals         []models.AssignmentInterval `json:"intervals"`
}

// ShiftMappingRequest upserts the shift group labels of a unit.
type ShiftMappingRequest struct {
	EarlyLabel string `json:"earlyLabel" validate:"required,max=64"`
	LateLabel  string `json:"lateLabel" validate:"required,max=64,nefield=EarlyLabel"`
	NightLabel string `json:"nightLabel" validate:"required,max=64,nefield=EarlyLabel,nefield=LateLabel"`
}
