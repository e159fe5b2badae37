package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shift-coverage-api/internal/dto"
	"github.com/noah-isme/shift-coverage-api/internal/models"
	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

type shiftMappingRepoMock struct {
	stored    map[string]*models.ShiftGroupMapping
	upsertErr error
}

func newShiftMappingRepoMock() *shiftMappingRepoMock {
	return &shiftMappingRepoMock{stored: map[string]*models.ShiftGroupMapping{}}
}

func (m *shiftMappingRepoMock) Get(ctx context.Context, unitID string) (*models.ShiftGroupMapping, error) {
	mapping, ok := m.stored[unitID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return mapping, nil
}

func (m *shiftMappingRepoMock) Upsert(ctx context.Context, mapping *models.ShiftGroupMapping) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.stored[mapping.UnitID] = mapping
	return nil
}

func TestShiftMappingServiceUpdateAndGet(t *testing.T) {
	repo := newShiftMappingRepoMock()
	svc := NewShiftMappingService(repo, nil, nil)
	ctx := context.Background()

	mapping, err := svc.Update(ctx, "u1", dto.ShiftMappingRequest{EarlyLabel: " A ", LateLabel: "B", NightLabel: "C"}, "planner-7")
	require.NoError(t, err)
	assert.Equal(t, "A", mapping.EarlyLabel)
	require.NotNil(t, mapping.UpdatedBy)
	assert.Equal(t, "planner-7", *mapping.UpdatedBy)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "C", got.NightLabel)
}

func TestShiftMappingServiceRejectsDuplicateLabels(t *testing.T) {
	svc := NewShiftMappingService(newShiftMappingRepoMock(), nil, nil)

	cases := []dto.ShiftMappingRequest{
		{EarlyLabel: "A", LateLabel: "A", NightLabel: "C"},
		{EarlyLabel: "A", LateLabel: "B", NightLabel: " B"},
		{EarlyLabel: "A", LateLabel: "B", NightLabel: "  "},
	}
	for _, req := range cases {
		_, err := svc.Update(context.Background(), "u1", req, "")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestShiftMappingServiceErrors(t *testing.T) {
	repo := newShiftMappingRepoMock()
	repo.upsertErr = errors.New("db down")
	svc := NewShiftMappingService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(ctx, " ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Update(ctx, "u1", dto.ShiftMappingRequest{EarlyLabel: "A", LateLabel: "B", NightLabel: "C"}, "")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
