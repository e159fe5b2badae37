package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

type assignmentIntervalStore interface {
	ListLongRunners(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, horizonStart time.Time) ([]models.AssignmentInterval, error)
	UpdateEndDate(ctx context.Context, exec sqlx.ExtContext, id string, end time.Time) error
	DeleteStartingWithin(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string, from, to time.Time) (int64, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, intervals []models.AssignmentInterval) error
}

type planRevisionStore interface {
	LockRevisions(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string) (map[string]int64, error)
	BumpRevisions(ctx context.Context, exec sqlx.ExtContext, employeeIDs []string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CommitPlan is the input of a board commit.
type CommitPlan struct {
	HorizonStart time.Time
	HorizonEnd   time.Time
	Board        *PlanningBoard
	Mapping      models.ShiftGroupMapping
	// ExtraEmployees are rewritten even when absent from the board, so that
	// removing someone from every cell clears their horizon.
	ExtraEmployees []string
	// ExpectedRevisions enables the optimistic check when non-nil. Missing
	// employees are expected at revision 0.
	ExpectedRevisions map[string]int64
}

// CommitSummary reports what a commit changed.
type CommitSummary struct {
	AffectedEmployees []string                    `json:"affected_employees"`
	Truncated         int                         `json:"truncated"`
	Continuations     int                         `json:"continuations"`
	Deleted           int64                       `json:"deleted"`
	Inserted          int                         `json:"inserted"`
	Intervals         []models.AssignmentInterval `json:"intervals"`
}

// IntervalRewriter persists a planning board into per-employee assignment intervals.
type IntervalRewriter struct {
	intervals assignmentIntervalStore
	revisions planRevisionStore
	tx        txProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewIntervalRewriter wires rewriter dependencies. A nil clock uses time.Now.
func NewIntervalRewriter(intervals assignmentIntervalStore, revisions planRevisionStore, tx txProvider, logger *zap.Logger, now func() time.Time) *IntervalRewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &IntervalRewriter{intervals: intervals, revisions: revisions, tx: tx, logger: logger, now: now}
}

// Validate checks commit preconditions without touching the store.
func (r *IntervalRewriter) Validate(plan CommitPlan) error {
	if plan.Board == nil {
		return appErrors.Clone(appErrors.ErrValidation, "planning board is required")
	}
	if !plan.Mapping.Complete() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "shift group mapping must define distinct labels for EARLY, LATE and NIGHT")
	}
	start := dateOnly(plan.HorizonStart)
	end := dateOnly(plan.HorizonEnd)
	if start.Before(dateOnly(r.now())) {
		return appErrors.Clone(appErrors.ErrValidation, "horizon start must not be before today")
	}
	if start.Weekday() != time.Monday {
		return appErrors.Clone(appErrors.ErrValidation, "horizon start must be a Monday")
	}
	if end.Before(start) {
		return appErrors.Clone(appErrors.ErrValidation, "horizon end must not be before horizon start")
	}
	days := int(end.Sub(start)/day) + 1
	if days != 7*plan.Board.HorizonWeeks() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("horizon spans %d days but the board holds %d weeks", days, plan.Board.HorizonWeeks()))
	}
	return nil
}

// Commit replaces each affected employee's timeline inside the horizon by the
// board content. Long-running intervals are truncated before the horizon and
// continued after it. All writes share one transaction.
func (r *IntervalRewriter) Commit(ctx context.Context, plan CommitPlan) (summary *CommitSummary, err error) {
	if err := r.Validate(plan); err != nil {
		return nil, err
	}
	start := dateOnly(plan.HorizonStart)
	end := dateOnly(plan.HorizonEnd)

	affected := affectedEmployees(plan.Board, plan.ExtraEmployees)
	summary = &CommitSummary{AffectedEmployees: affected, Intervals: []models.AssignmentInterval{}}
	if len(affected) == 0 {
		return summary, nil
	}
	if r.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := r.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if r.revisions != nil {
		if err = r.checkRevisions(ctx, tx, affected, plan.ExpectedRevisions); err != nil {
			return nil, err
		}
	}

	longRunners, err := r.intervals.ListLongRunners(ctx, tx, affected, start)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overlapping assignments")
		return nil, err
	}

	boundary := addDays(start, -1)
	staged := make([]models.AssignmentInterval, 0)
	for _, interval := range longRunners {
		if err = r.intervals.UpdateEndDate(ctx, tx, interval.ID, boundary); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to truncate assignment")
			return nil, err
		}
		summary.Truncated++
		if interval.EndDate == nil || dateOnly(*interval.EndDate).After(end) {
			staged = append(staged, models.AssignmentInterval{
				EmployeeID: interval.EmployeeID,
				GroupLabel: interval.GroupLabel,
				StartDate:  addDays(end, 1),
				EndDate:    copyDate(interval.EndDate),
				Position:   interval.Position,
			})
			summary.Continuations++
		}
	}

	deleted, err := r.intervals.DeleteStartingWithin(ctx, tx, affected, start, end)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear assignments inside the horizon")
		return nil, err
	}
	summary.Deleted = deleted

	weekly, err := buildWeeklyIntervals(start, plan.Board, plan.Mapping)
	if err != nil {
		return nil, err
	}
	staged = append(staged, weekly...)

	if len(staged) > 0 {
		if err = r.intervals.InsertBatch(ctx, tx, staged); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert assignments")
			return nil, err
		}
	}
	summary.Inserted = len(staged)
	summary.Intervals = staged

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit assignment transaction")
		return nil, err
	}

	r.logger.Info("planning board committed",
		zap.Time("horizon_start", start),
		zap.Time("horizon_end", end),
		zap.Int("employees", len(affected)),
		zap.Int("truncated", summary.Truncated),
		zap.Int("continuations", summary.Continuations),
		zap.Int64("deleted", summary.Deleted),
		zap.Int("inserted", summary.Inserted),
	)
	return summary, nil
}

func (r *IntervalRewriter) checkRevisions(ctx context.Context, exec sqlx.ExtContext, affected []string, expected map[string]int64) error {
	current, err := r.revisions.LockRevisions(ctx, exec, affected)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock plan revisions")
	}
	if expected != nil {
		var stale []string
		for _, id := range affected {
			if current[id] != expected[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("assignments changed since the session was opened for: %s", strings.Join(stale, ", ")))
		}
	}
	if err := r.revisions.BumpRevisions(ctx, exec, affected); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bump plan revisions")
	}
	return nil
}

func buildWeeklyIntervals(horizonStart time.Time, board *PlanningBoard, mapping models.ShiftGroupMapping) ([]models.AssignmentInterval, error) {
	var out []models.AssignmentInterval
	for week := 0; week < board.HorizonWeeks(); week++ {
		from, to := weekBounds(horizonStart, week)
		for _, code := range models.ShiftCodes {
			label, ok := mapping.Label(code)
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("no group label configured for %s", code))
			}
			for position, employeeID := range board.Cell(week, code) {
				end := to
				out = append(out, models.AssignmentInterval{
					EmployeeID: employeeID,
					GroupLabel: label,
					StartDate:  from,
					EndDate:    &end,
					Position:   position,
				})
			}
		}
	}
	return out, nil
}

func affectedEmployees(board *PlanningBoard, extra []string) []string {
	set := make(map[string]struct{})
	for _, id := range board.Employees() {
		set[id] = struct{}{}
	}
	for _, id := range extra {
		if id != "" {
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

func copyDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dateOnly(*t)
	return &v
}
