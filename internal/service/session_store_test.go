package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (failingBackend) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func (failingBackend) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func TestSessionStoreRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	store := NewSessionStore(nil, metrics, time.Minute, nil)
	ctx := context.Background()

	session := &PlanningSession{ID: "s1", UnitID: "u1", HorizonStart: date("2030-01-07"), HorizonWeeks: 1, Revisions: map[string]int64{"e1": 3}}
	require.NoError(t, store.Save(ctx, session))
	assert.False(t, session.ExpiresAt.IsZero())

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.UnitID)
	assert.Equal(t, int64(3), loaded.Revisions["e1"])

	loaded.UnitID = "changed"
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", again.UnitID, "stored copies are not shared")

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 410, appErrors.FromError(err).Status)

	hits, err := testutil.GatherAndCount(metrics.Registry(), "session_store_hits_total", "session_store_misses_total")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestSessionStoreDefaults(t *testing.T) {
	store := NewSessionStore(nil, nil, 0, nil)
	assert.Equal(t, 2*time.Hour, store.TTL())
}

func TestMemorySessionBackendExpires(t *testing.T) {
	backend := NewMemorySessionBackend()
	now := date("2030-01-07")
	backend.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "s1", map[string]string{"id": "s1"}, time.Minute))

	var dest map[string]string
	require.NoError(t, backend.Get(ctx, "s1", &dest))
	assert.Equal(t, "s1", dest["id"])

	now = now.Add(2 * time.Minute)
	err := backend.Get(ctx, "s1", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Empty(t, backend.items)
}

func TestSessionStoreBackendFailure(t *testing.T) {
	store := NewSessionStore(failingBackend{}, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := store.Load(ctx, "s1")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	err = store.Save(ctx, &PlanningSession{ID: "s1"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	err = store.Delete(ctx, "s1")
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestMemorySessionBackendSweep(t *testing.T) {
	backend := NewMemorySessionBackend()
	now := date("2030-01-07")
	backend.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "short", "x", time.Minute))
	require.NoError(t, backend.Set(ctx, "long", "y", time.Hour))

	now = now.Add(10 * time.Minute)
	assert.Equal(t, 1, backend.Sweep())
	_, ok := backend.items["long"]
	assert.True(t, ok)
}
