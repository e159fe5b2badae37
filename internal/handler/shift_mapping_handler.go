package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/shift-coverage-api/internal/dto"
	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
	"github.com/noah-isme/shift-coverage-api/pkg/response"
)

type shiftMappingService interface {
	Get(ctx context.Context, unitID string) (*models.ShiftGroupMapping, error)
	Update(ctx context.Context, unitID string, req dto.ShiftMappingRequest, actorID string) (*models.ShiftGroupMapping, error)
}

// ShiftMappingHandler exposes the per-unit shift group mapping.
type ShiftMappingHandler struct {
	service shiftMappingService
}

// NewShiftMappingHandler builds a new handler.
func NewShiftMappingHandler(service shiftMappingService) *ShiftMappingHandler {
	return &ShiftMappingHandler{service: service}
}

// Get godoc
// @Summary Get shift group mapping
// @Tags ShiftMapping
// @Produce json
// @Param unitId path string true "Unit ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /units/{unitId}/shift-mapping [get]
func (h *ShiftMappingHandler) Get(c *gin.Context) {
	mapping, err := h.service.Get(c.Request.Context(), c.Param("unitId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mapping)
}

// Update godoc
// @Summary Update shift group mapping
// @Tags ShiftMapping
// @Accept json
// @Produce json
// @Param unitId path string true "Unit ID"
// @Param payload body dto.ShiftMappingRequest true "Mapping payload"
// @Success 200 {object} response.Envelope
// @Router /units/{unitId}/shift-mapping [put]
func (h *ShiftMappingHandler) Update(c *gin.Context) {
	var req dto.ShiftMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift mapping payload"))
		return
	}
	mapping, err := h.service.Update(c.Request.Context(), c.Param("unitId"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mapping)
}
