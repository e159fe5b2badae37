package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-coverage-api/internal/dto"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

type planningServiceMock struct {
	openReq   dto.OpenSessionRequest
	placeID   string
	placeReq  dto.PlaceEmployeeRequest
	moveReq   dto.MoveEmployeeRequest
	closed    string
	err       error
	coverage  *dto.CoverageResponse
	committed *dto.CommitResponse
}

func (m *planningServiceMock) OpenSession(ctx context.Context, req dto.OpenSessionRequest) (*dto.PlanningSessionResponse, error) {
	m.openReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.PlanningSessionResponse{ID: "s1", UnitID: req.UnitID, Weeks: req.Weeks}, nil
}

func (m *planningServiceMock) GetSession(ctx context.Context, id string) (*dto.PlanningSessionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.PlanningSessionResponse{ID: id}, nil
}

func (m *planningServiceMock) CloseSession(ctx context.Context, id string) error {
	m.closed = id
	return m.err
}

func (m *planningServiceMock) Place(ctx context.Context, id string, req dto.PlaceEmployeeRequest) (*dto.PlanningSessionResponse, error) {
	m.placeID = id
	m.placeReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.PlanningSessionResponse{ID: id}, nil
}

func (m *planningServiceMock) Move(ctx context.Context, id string, req dto.MoveEmployeeRequest) (*dto.PlanningSessionResponse, error) {
	m.moveReq = req
	return &dto.PlanningSessionResponse{ID: id}, m.err
}

func (m *planningServiceMock) Remove(ctx context.Context, id string, req dto.RemoveEmployeeRequest) (*dto.PlanningSessionResponse, error) {
	return &dto.PlanningSessionResponse{ID: id}, m.err
}

func (m *planningServiceMock) Coverage(ctx context.Context, id string) (*dto.CoverageResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.coverage, nil
}

func (m *planningServiceMock) Commit(ctx context.Context, id string) (*dto.CommitResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.committed, nil
}

func newPlanningRouter(svc planningService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPlanningHandler(svc)
	r := gin.New()
	sessions := r.Group("/planning/sessions")
	sessions.POST("", h.Open)
	sessions.GET("/:id", h.Get)
	sessions.DELETE("/:id", h.Close)
	sessions.POST("/:id/place", h.Place)
	sessions.POST("/:id/move", h.Move)
	sessions.POST("/:id/remove", h.Remove)
	sessions.GET("/:id/coverage", h.Coverage)
	sessions.POST("/:id/commit", h.Commit)
	return r
}

func newJSONRequest(method, path string, body interface{}) *http.Request {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func perform(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	return serve(r, newJSONRequest(method, path, body))
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestPlanningHandlerOpen(t *testing.T) {
	svc := &planningServiceMock{}
	r := newPlanningRouter(svc)

	w := perform(r, http.MethodPost, "/planning/sessions", map[string]interface{}{"unitId": "u1", "horizonStart": "2030-01-07", "weeks": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", svc.openReq.UnitID)
	assert.Equal(t, 2, svc.openReq.Weeks)

	var session dto.PlanningSessionResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &session))
	assert.Equal(t, "s1", session.ID)
}

func TestPlanningHandlerOpenInvalidBody(t *testing.T) {
	r := newPlanningRouter(&planningServiceMock{})

	w := perform(r, http.MethodPost, "/planning/sessions", `{"unitId":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestPlanningHandlerMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		path   string
		body   interface{}
		status int
	}{
		{"expired session", appErrors.Clone(appErrors.ErrSessionExpired, "gone"), http.MethodGet, "/planning/sessions/s1", nil, http.StatusGone},
		{"strict rules", appErrors.Clone(appErrors.ErrRuleResolution, "bad pattern"), http.MethodGet, "/planning/sessions/s1/coverage", nil, http.StatusUnprocessableEntity},
		{"stale commit", appErrors.Clone(appErrors.ErrConflict, "stale"), http.MethodPost, "/planning/sessions/s1/commit", nil, http.StatusConflict},
		{"missing mapping", appErrors.Clone(appErrors.ErrPreconditionFailed, "no mapping"), http.MethodPost, "/planning/sessions/s1/commit", nil, http.StatusPreconditionFailed},
		{"inactive employee", appErrors.Clone(appErrors.ErrValidation, "inactive"), http.MethodPost, "/planning/sessions/s1/place",
			map[string]interface{}{"weekOffset": 0, "shift": "EARLY", "employeeId": "e3"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newPlanningRouter(&planningServiceMock{err: tc.err})
			w := perform(r, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, w.Code)
			assert.NotNil(t, decode(t, w).Error)
		})
	}
}

func TestPlanningHandlerPlaceAndMove(t *testing.T) {
	svc := &planningServiceMock{}
	r := newPlanningRouter(svc)

	w := perform(r, http.MethodPost, "/planning/sessions/s1/place", map[string]interface{}{"weekOffset": 1, "shift": "NIGHT", "employeeId": "e2", "position": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.placeID)
	assert.Equal(t, 1, svc.placeReq.WeekOffset)
	assert.Equal(t, "NIGHT", svc.placeReq.Shift)
	require.NotNil(t, svc.placeReq.Position)
	assert.Equal(t, 0, *svc.placeReq.Position)

	w = perform(r, http.MethodPost, "/planning/sessions/s1/move", map[string]interface{}{
		"from":       map[string]interface{}{"weekOffset": 0, "shift": "EARLY"},
		"to":         map[string]interface{}{"weekOffset": 1, "shift": "LATE"},
		"employeeId": "e1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "LATE", svc.moveReq.To.Shift)
	assert.Nil(t, svc.moveReq.Position)
}

func TestPlanningHandlerCoverageMeta(t *testing.T) {
	svc := &planningServiceMock{coverage: &dto.CoverageResponse{SessionID: "s1", Uncovered: 3, Slots: []dto.SlotCoverage{}}}
	r := newPlanningRouter(svc)

	w := perform(r, http.MethodGet, "/planning/sessions/s1/coverage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w).Meta["uncovered"])
}

func TestPlanningHandlerCommitAndClose(t *testing.T) {
	svc := &planningServiceMock{committed: &dto.CommitResponse{SessionID: "s1", AffectedEmployees: []string{"e1"}, Inserted: 2}}
	r := newPlanningRouter(svc)

	w := perform(r, http.MethodPost, "/planning/sessions/s1/commit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result dto.CommitResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, 2, result.Inserted)

	w = perform(r, http.MethodDelete, "/planning/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s1", svc.closed)
}
