package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-coverage-api/internal/dto"
	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

type shiftMappingRepository interface {
	Get(ctx context.Context, unitID string) (*models.ShiftGroupMapping, error)
	Upsert(ctx context.Context, mapping *models.ShiftGroupMapping) error
}

// ShiftMappingService maintains which assignment group label each shift code maps to.
type ShiftMappingService struct {
	repo      shiftMappingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftMappingService constructs the service.
func NewShiftMappingService(repo shiftMappingRepository, validate *validator.Validate, logger *zap.Logger) *ShiftMappingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftMappingService{repo: repo, validator: validate, logger: logger}
}

// Get returns the mapping of a unit.
func (s *ShiftMappingService) Get(ctx context.Context, unitID string) (*models.ShiftGroupMapping, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unit id is required")
	}
	mapping, err := s.repo.Get(ctx, unitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unit %s has no shift group mapping", unitID))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift group mapping")
	}
	return mapping, nil
}

// Update replaces the mapping of a unit. Labels are trimmed and must stay distinct.
func (s *ShiftMappingService) Update(ctx context.Context, unitID string, req dto.ShiftMappingRequest, actorID string) (*models.ShiftGroupMapping, error) {
	if strings.TrimSpace(unitID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unit id is required")
	}
	req.EarlyLabel = strings.TrimSpace(req.EarlyLabel)
	req.LateLabel = strings.TrimSpace(req.LateLabel)
	req.NightLabel = strings.TrimSpace(req.NightLabel)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift mapping payload")
	}
	mapping := &models.ShiftGroupMapping{
		UnitID:     unitID,
		EarlyLabel: req.EarlyLabel,
		LateLabel:  req.LateLabel,
		NightLabel: req.NightLabel,
	}
	if actorID != "" {
		mapping.UpdatedBy = &actorID
	}
	if !mapping.Complete() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "labels for EARLY, LATE and NIGHT must be distinct")
	}
	if err := s.repo.Upsert(ctx, mapping); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store shift group mapping")
	}
	s.logger.Info("shift group mapping updated",
		zap.String("unit_id", unitID),
		zap.String("early", mapping.EarlyLabel),
		zap.String("late", mapping.LateLabel),
		zap.String("night", mapping.NightLabel),
	)
	return mapping, nil
}
