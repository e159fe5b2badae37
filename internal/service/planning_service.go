package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/shift-coverage-api/internal/dto"
	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

type planningEmployeeReader interface {
	ListByUnit(ctx context.Context, unitID string) ([]models.Employee, error)
}

type planningQualificationReader interface {
	List(ctx context.Context) ([]models.Qualification, error)
}

type demandRuleReader interface {
	ListForRange(ctx context.Context, unitID string, from, to time.Time) ([]models.DemandRule, error)
}

type dayOverrideReader interface {
	ListForEmployees(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.DayOverride, error)
}

type assignmentIntervalReader interface {
	ListOverlapping(ctx context.Context, employeeIDs []string, from, to time.Time) ([]models.AssignmentInterval, error)
}

type planRevisionReader interface {
	Revisions(ctx context.Context, employeeIDs []string) (map[string]int64, error)
}

type shiftMappingReader interface {
	Get(ctx context.Context, unitID string) (*models.ShiftGroupMapping, error)
}

type planCommitter interface {
	Commit(ctx context.Context, plan CommitPlan) (*CommitSummary, error)
}

// PlanningSession is the stored state of an open planning horizon.
type PlanningSession struct {
	ID              string                      `json:"id"`
	UnitID          string                      `json:"unit_id"`
	HorizonStart    time.Time                   `json:"horizon_start"`
	HorizonWeeks    int                         `json:"horizon_weeks"`
	Employees       []models.Employee           `json:"employees"`
	Qualifications  []models.Qualification      `json:"qualifications"`
	Rules           []models.DemandRule         `json:"rules"`
	Mapping         *models.ShiftGroupMapping   `json:"mapping,omitempty"`
	Overrides       []models.DayOverride        `json:"overrides"`
	Board           BoardSnapshot               `json:"board"`
	SeededEmployees []string                    `json:"seeded_employees"`
	Revisions       map[string]int64            `json:"revisions"`
	Skipped         []models.AssignmentInterval `json:"skipped,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	ExpiresAt       time.Time                   `json:"expires_at"`
}

// HorizonEnd returns the last date of the horizon.
func (s *PlanningSession) HorizonEnd() time.Time {
	return addDays(s.HorizonStart, 7*s.HorizonWeeks-1)
}

// PlanningConfig governs planning session behaviour.
type PlanningConfig struct {
	MaxHorizonWeeks int
	StrictRules     bool
}

// PlanningService drives planning sessions: open, edit, evaluate coverage and commit.
type PlanningService struct {
	employees      planningEmployeeReader
	qualifications planningQualificationReader
	rules          demandRuleReader
	overrides      dayOverrideReader
	intervals      assignmentIntervalReader
	revisions      planRevisionReader
	mappings       shiftMappingReader
	committer      planCommitter
	store          *SessionStore
	metrics        *MetricsService
	validator      *validator.Validate
	logger         *zap.Logger
	cfg            PlanningConfig
	now            func() time.Time

	locks sync.Map
}

// NewPlanningService wires planning dependencies.
func NewPlanningService(
	employees planningEmployeeReader,
	qualifications planningQualificationReader,
	rules demandRuleReader,
	overrides dayOverrideReader,
	intervals assignmentIntervalReader,
	revisions planRevisionReader,
	mappings shiftMappingReader,
	committer planCommitter,
	store *SessionStore,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg PlanningConfig,
) *PlanningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewSessionStore(nil, metrics, 0, logger)
	}
	if cfg.MaxHorizonWeeks <= 0 {
		cfg.MaxHorizonWeeks = 12
	}
	return &PlanningService{
		employees:      employees,
		qualifications: qualifications,
		rules:          rules,
		overrides:      overrides,
		intervals:      intervals,
		revisions:      revisions,
		mappings:       mappings,
		committer:      committer,
		store:          store,
		metrics:        metrics,
		validator:      validate,
		logger:         logger,
		cfg:            cfg,
		now:            time.Now,
	}
}

// OpenSession loads the planning scope of a unit and seeds a board from persisted intervals.
func (s *PlanningService) OpenSession(ctx context.Context, req dto.OpenSessionRequest) (*dto.PlanningSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planning session payload")
	}
	start, err := time.Parse(dto.DateLayout, req.HorizonStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "horizonStart must be a date in YYYY-MM-DD format")
	}
	if start.Weekday() != time.Monday {
		return nil, appErrors.Clone(appErrors.ErrValidation, "horizonStart must be a Monday")
	}
	if req.Weeks > s.cfg.MaxHorizonWeeks {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weeks must not exceed %d", s.cfg.MaxHorizonWeeks))
	}

	session := &PlanningSession{
		ID:           uuid.NewString(),
		UnitID:       req.UnitID,
		HorizonStart: dateOnly(start),
		HorizonWeeks: req.Weeks,
		CreatedAt:    s.now().UTC(),
	}
	end := session.HorizonEnd()

	scope, scopeCtx := errgroup.WithContext(ctx)
	scope.Go(func() error {
		defer s.observe("employees_by_unit", time.Now())
		employees, err := s.employees.ListByUnit(scopeCtx, req.UnitID)
		session.Employees = employees
		return err
	})
	scope.Go(func() error {
		defer s.observe("qualifications", time.Now())
		quals, err := s.qualifications.List(scopeCtx)
		session.Qualifications = quals
		return err
	})
	scope.Go(func() error {
		defer s.observe("demand_rules_for_range", time.Now())
		rules, err := s.rules.ListForRange(scopeCtx, req.UnitID, session.HorizonStart, end)
		session.Rules = rules
		return err
	})
	scope.Go(func() error {
		defer s.observe("shift_mapping", time.Now())
		mapping, err := s.mappings.Get(scopeCtx, req.UnitID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		session.Mapping = mapping
		return err
	})
	if err := scope.Wait(); err != nil {
		s.logger.Error("failed to load planning scope", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning scope")
	}
	if len(session.Employees) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unit %s has no employees", req.UnitID))
	}

	ids := make([]string, 0, len(session.Employees))
	for _, e := range session.Employees {
		ids = append(ids, e.ID)
	}
	var intervals []models.AssignmentInterval
	timeline, timelineCtx := errgroup.WithContext(ctx)
	timeline.Go(func() error {
		defer s.observe("intervals_overlapping", time.Now())
		var err error
		intervals, err = s.intervals.ListOverlapping(timelineCtx, ids, session.HorizonStart, end)
		return err
	})
	timeline.Go(func() error {
		defer s.observe("day_overrides", time.Now())
		overrides, err := s.overrides.ListForEmployees(timelineCtx, ids, session.HorizonStart, end)
		session.Overrides = overrides
		return err
	})
	timeline.Go(func() error {
		defer s.observe("plan_revisions", time.Now())
		revisions, err := s.revisions.Revisions(timelineCtx, ids)
		session.Revisions = revisions
		return err
	})
	if err := timeline.Wait(); err != nil {
		s.logger.Error("failed to load assignment timeline", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment timeline")
	}

	var mapping models.ShiftGroupMapping
	if session.Mapping != nil {
		mapping = *session.Mapping
	}
	board, skipped, err := SeedBoard(session.HorizonStart, session.HorizonWeeks, intervals, mapping)
	if err != nil {
		s.logger.Error("failed to seed planning board", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed planning board")
	}
	session.Board = board.Snapshot()
	session.SeededEmployees = board.Employees()
	session.Skipped = skipped
	if session.Revisions == nil {
		session.Revisions = map[string]int64{}
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.metrics.RecordSessionOpened()
	s.logger.Info("planning session opened",
		zap.String("session_id", session.ID),
		zap.String("unit_id", session.UnitID),
		zap.Time("horizon_start", session.HorizonStart),
		zap.Int("weeks", session.HorizonWeeks),
		zap.Int("seeded_employees", len(session.SeededEmployees)),
		zap.Int("skipped_intervals", len(skipped)),
	)
	return s.view(session, board), nil
}

// GetSession renders the current state of a session.
func (s *PlanningService) GetSession(ctx context.Context, id string) (*dto.PlanningSessionResponse, error) {
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	board, err := RestoreBoard(session.Board)
	if err != nil {
		return nil, err
	}
	return s.view(session, board), nil
}

// CloseSession discards a session without committing it.
func (s *PlanningService) CloseSession(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	if _, err := s.store.Load(ctx, id); err != nil {
		s.forgetExpired(id, err)
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.Delete(id)
	return nil
}

// Place puts an employee into a cell, optionally at a given position.
func (s *PlanningService) Place(ctx context.Context, id string, req dto.PlaceEmployeeRequest) (*dto.PlanningSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid place payload")
	}
	return s.mutate(ctx, id, func(board *PlanningBoard, catalog *Catalog) error {
		if err := catalog.Placeable(req.EmployeeID); err != nil {
			return err
		}
		shift := models.ShiftCode(req.Shift)
		if req.Position != nil {
			return board.Insert(req.WeekOffset, shift, req.EmployeeID, *req.Position)
		}
		return board.Place(req.WeekOffset, shift, req.EmployeeID)
	})
}

// Move relocates an employee between two cells.
func (s *PlanningService) Move(ctx context.Context, id string, req dto.MoveEmployeeRequest) (*dto.PlanningSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	return s.mutate(ctx, id, func(board *PlanningBoard, catalog *Catalog) error {
		if err := catalog.Placeable(req.EmployeeID); err != nil {
			return err
		}
		position := -1
		if req.Position != nil {
			position = *req.Position
		}
		from := BoardCellKey{WeekOffset: req.From.WeekOffset, Shift: models.ShiftCode(req.From.Shift)}
		to := BoardCellKey{WeekOffset: req.To.WeekOffset, Shift: models.ShiftCode(req.To.Shift)}
		return board.Move(from, to, req.EmployeeID, position)
	})
}

// Remove clears an employee from one cell.
func (s *PlanningService) Remove(ctx context.Context, id string, req dto.RemoveEmployeeRequest) (*dto.PlanningSessionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid remove payload")
	}
	return s.mutate(ctx, id, func(board *PlanningBoard, _ *Catalog) error {
		removed, err := board.Remove(req.WeekOffset, models.ShiftCode(req.Shift), req.EmployeeID)
		if err != nil {
			return err
		}
		if !removed {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("employee %s is not placed in week %d %s", req.EmployeeID, req.WeekOffset, req.Shift))
		}
		return nil
	})
}

// Coverage evaluates every (date, shift) slot of the horizon against the demand rules.
func (s *PlanningService) Coverage(ctx context.Context, id string) (*dto.CoverageResponse, error) {
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	board, err := RestoreBoard(session.Board)
	if err != nil {
		return nil, err
	}
	catalog := NewCatalog(session.Employees, session.Qualifications)
	resolver := NewDemandResolver(session.Qualifications, !s.cfg.StrictRules)
	overrides := indexOverrides(session.HorizonStart, session.HorizonWeeks, session.Overrides)

	reported := make(map[string]struct{})
	resp := &dto.CoverageResponse{SessionID: session.ID, Slots: make([]dto.SlotCoverage, 0, session.HorizonWeeks*7*len(models.ShiftCodes))}
	for week := 0; week < session.HorizonWeeks; week++ {
		for offset := 0; offset < 7; offset++ {
			date := addDays(session.HorizonStart, week*7+offset)
			for _, shift := range models.ShiftCodes {
				resolution, err := resolver.Resolve(date, shift, session.Rules)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrRuleResolution.Code, appErrors.ErrRuleResolution.Status, err.Error())
				}
				for _, issue := range resolution.Issues {
					key := issue.RuleID + "|" + string(issue.Kind)
					if _, seen := reported[key]; seen {
						continue
					}
					reported[key] = struct{}{}
					s.logger.Warn("demand rule evaluated fail-open",
						zap.String("session_id", session.ID),
						zap.String("rule_id", issue.RuleID),
						zap.String("kind", string(issue.Kind)),
						zap.String("value", issue.Value),
					)
				}
				employees := slotEmployees(board, week, shift, date, overrides)
				result := MatchCoverage(resolution.Lines, catalog.EmployeesByID(employees))
				s.metrics.RecordCoverage(result.Status)
				if result.Status == models.CoverageUncovered {
					resp.Uncovered++
				}
				resp.Slots = append(resp.Slots, dto.SlotCoverage{
					Date:       date.Format(dto.DateLayout),
					WeekOffset: week,
					Shift:      string(shift),
					Status:     result.Status,
					Shortfall:  result.Shortfall,
					Employees:  employees,
					Lines:      result.Lines,
					Issues:     resolution.Issues,
				})
			}
		}
	}
	return resp, nil
}

// Commit persists the board of a session and closes it on success.
func (s *PlanningService) Commit(ctx context.Context, id string) (*dto.CommitResponse, error) {
	unlock := s.lock(id)
	defer unlock()

	started := time.Now()
	session, err := s.store.Load(ctx, id)
	if err != nil {
		s.forgetExpired(id, err)
		return nil, err
	}
	board, err := RestoreBoard(session.Board)
	if err != nil {
		return nil, err
	}
	mapping, err := s.mappings.Get(ctx, session.UnitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordCommit("rejected", time.Since(started), nil)
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("unit %s has no shift group mapping", session.UnitID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift group mapping")
	}

	plan := CommitPlan{
		HorizonStart:      session.HorizonStart,
		HorizonEnd:        session.HorizonEnd(),
		Board:             board,
		Mapping:           *mapping,
		ExtraEmployees:    session.SeededEmployees,
		ExpectedRevisions: session.Revisions,
	}
	summary, err := s.committer.Commit(ctx, plan)
	if err != nil {
		s.metrics.RecordCommit(commitOutcome(err), time.Since(started), nil)
		return nil, err
	}
	s.metrics.RecordCommit("committed", time.Since(started), summary)

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to discard committed session", zap.String("session_id", id), zap.Error(err))
	}
	s.locks.Delete(id)
	return &dto.CommitResponse{
		SessionID:         session.ID,
		AffectedEmployees: summary.AffectedEmployees,
		Truncated:         summary.Truncated,
		Continuations:     summary.Continuations,
		Deleted:           summary.Deleted,
		Inserted:          summary.Inserted,
		Intervals:         summary.Intervals,
	}, nil
}

func (s *PlanningService) mutate(ctx context.Context, id string, apply func(board *PlanningBoard, catalog *Catalog) error) (*dto.PlanningSessionResponse, error) {
	unlock := s.lock(id)
	defer unlock()

	session, err := s.store.Load(ctx, id)
	if err != nil {
		s.forgetExpired(id, err)
		return nil, err
	}
	board, err := RestoreBoard(session.Board)
	if err != nil {
		return nil, err
	}
	if err := apply(board, NewCatalog(session.Employees, session.Qualifications)); err != nil {
		return nil, err
	}
	session.Board = board.Snapshot()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session, board), nil
}

func (s *PlanningService) lock(id string) func() {
	value, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// forgetExpired drops the lock of a session the store no longer knows.
func (s *PlanningService) forgetExpired(id string, err error) {
	if errors.Is(err, appErrors.ErrSessionExpired) {
		s.locks.Delete(id)
	}
}

func (s *PlanningService) observe(label string, started time.Time) {
	s.metrics.ObserveDBQuery(label, time.Since(started))
}

func (s *PlanningService) view(session *PlanningSession, board *PlanningBoard) *dto.PlanningSessionResponse {
	catalog := NewCatalog(session.Employees, session.Qualifications)
	var mapping models.ShiftGroupMapping
	if session.Mapping != nil {
		mapping = *session.Mapping
	}
	resp := &dto.PlanningSessionResponse{
		ID:               session.ID,
		UnitID:           session.UnitID,
		HorizonStart:     session.HorizonStart.Format(dto.DateLayout),
		HorizonEnd:       session.HorizonEnd().Format(dto.DateLayout),
		Weeks:            session.HorizonWeeks,
		MappingComplete:  mapping.Complete(),
		Cells:            make([]dto.BoardCellView, 0, session.HorizonWeeks*len(models.ShiftCodes)),
		Employees:        catalog.Employees(),
		Qualifications:   catalog.Qualifications(),
		SkippedIntervals: session.Skipped,
		ExpiresAt:        session.ExpiresAt,
	}
	for week := 0; week < session.HorizonWeeks; week++ {
		weekStart, _ := weekBounds(session.HorizonStart, week)
		for _, shift := range models.ShiftCodes {
			label, _ := mapping.Label(shift)
			cell := dto.BoardCellView{
				WeekOffset: week,
				WeekStart:  weekStart.Format(dto.DateLayout),
				Shift:      string(shift),
				GroupLabel: label,
				Employees:  []dto.BoardEmployee{},
			}
			for _, e := range catalog.EmployeesByID(board.Cell(week, shift)) {
				cell.Employees = append(cell.Employees, dto.BoardEmployee{ID: e.ID, DisplayName: e.DisplayName, TeamLead: e.TeamLead})
			}
			resp.Cells = append(resp.Cells, cell)
		}
	}
	return resp
}

func commitOutcome(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrConflict):
		return "conflict"
	case errors.Is(err, appErrors.ErrValidation), errors.Is(err, appErrors.ErrPreconditionFailed):
		return "rejected"
	default:
		return "failed"
	}
}

type overrideIndex map[string]map[string]*models.ShiftCode

func indexOverrides(horizonStart time.Time, weeks int, overrides []models.DayOverride) overrideIndex {
	index := make(overrideIndex)
	for _, o := range overrides {
		if weekOffsetOf(horizonStart, weeks, o.Date) < 0 {
			continue
		}
		key := dateOnly(o.Date).Format(dto.DateLayout)
		if index[key] == nil {
			index[key] = make(map[string]*models.ShiftCode)
		}
		index[key][o.EmployeeID] = o.ShiftCode
	}
	return index
}

// slotEmployees returns the employees working a (date, shift) slot: the board
// cell of that week minus employees overridden away, plus employees overridden in.
func slotEmployees(board *PlanningBoard, week int, shift models.ShiftCode, date time.Time, overrides overrideIndex) []string {
	dayOverrides := overrides[dateOnly(date).Format(dto.DateLayout)]
	cell := board.Cell(week, shift)
	if len(dayOverrides) == 0 {
		return cell
	}
	out := make([]string, 0, len(cell))
	present := make(map[string]struct{}, len(cell))
	for _, id := range cell {
		if code, ok := dayOverrides[id]; ok && (code == nil || *code != shift) {
			continue
		}
		out = append(out, id)
		present[id] = struct{}{}
	}
	joined := make([]string, 0)
	for id, code := range dayOverrides {
		if code == nil || *code != shift {
			continue
		}
		if _, ok := present[id]; !ok {
			joined = append(joined, id)
		}
	}
	sort.Strings(joined)
	return append(out, joined...)
}
