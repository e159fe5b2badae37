package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-coverage-api/internal/dto"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
	"github.com/noah-isme/shift-coverage-api/pkg/response"
)

type planningService interface {
	OpenSession(ctx context.Context, req dto.OpenSessionRequest) (*dto.PlanningSessionResponse, error)
	GetSession(ctx context.Context, id string) (*dto.PlanningSessionResponse, error)
	CloseSession(ctx context.Context, id string) error
	Place(ctx context.Context, id string, req dto.PlaceEmployeeRequest) (*dto.PlanningSessionResponse, error)
	Move(ctx context.Context, id string, req dto.MoveEmployeeRequest) (*dto.PlanningSessionResponse, error)
	Remove(ctx context.Context, id string, req dto.RemoveEmployeeRequest) (*dto.PlanningSessionResponse, error)
	Coverage(ctx context.Context, id string) (*dto.CoverageResponse, error)
	Commit(ctx context.Context, id string) (*dto.CommitResponse, error)
}

// PlanningHandler exposes planning session endpoints.
type PlanningHandler struct {
	service planningService
}

// NewPlanningHandler constructs a planning handler.
func NewPlanningHandler(service planningService) *PlanningHandler {
	return &PlanningHandler{service: service}
}

// Open godoc
// @Summary Open planning session
// @Description Loads the unit's employees, demand rules and current assignments into a new board
// @Tags Planning
// @Accept json
// @Produce json
// @Param payload body dto.OpenSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planning/sessions [post]
func (h *PlanningHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid planning session payload"))
		return
	}
	session, err := h.service.OpenSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get godoc
// @Summary Get planning session
// @Tags Planning
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /planning/sessions/{id} [get]
func (h *PlanningHandler) Get(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Close godoc
// @Summary Discard planning session
// @Tags Planning
// @Param id path string true "Session ID"
// @Success 204
// @Router /planning/sessions/{id} [delete]
func (h *PlanningHandler) Close(c *gin.Context) {
	if err := h.service.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Place godoc
// @Summary Place employee on the board
// @Tags Planning
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.PlaceEmployeeRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /planning/sessions/{id}/place [post]
func (h *PlanningHandler) Place(c *gin.Context) {
	var req dto.PlaceEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid place payload"))
		return
	}
	session, err := h.service.Place(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Move godoc
// @Summary Move employee between cells
// @Tags Planning
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.MoveEmployeeRequest true "Move"
// @Success 200 {object} response.Envelope
// @Router /planning/sessions/{id}/move [post]
func (h *PlanningHandler) Move(c *gin.Context) {
	var req dto.MoveEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	session, err := h.service.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Remove godoc
// @Summary Remove employee from a cell
// @Tags Planning
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.RemoveEmployeeRequest true "Removal"
// @Success 200 {object} response.Envelope
// @Router /planning/sessions/{id}/remove [post]
func (h *PlanningHandler) Remove(c *gin.Context) {
	var req dto.RemoveEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid remove payload"))
		return
	}
	session, err := h.service.Remove(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Coverage godoc
// @Summary Evaluate coverage
// @Description Returns the coverage verdict of every date and shift in the horizon
// @Tags Planning
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /planning/sessions/{id}/coverage [get]
func (h *PlanningHandler) Coverage(c *gin.Context) {
	coverage, err := h.service.Coverage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coverage, map[string]interface{}{"uncovered": coverage.Uncovered})
}

// Commit godoc
// @Summary Commit planning session
// @Description Rewrites assignment intervals of affected employees for the horizon
// @Tags Planning
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /planning/sessions/{id}/commit [post]
func (h *PlanningHandler) Commit(c *gin.Context) {
	result, err := h.service.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
