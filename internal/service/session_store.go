package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/shift-coverage-api/pkg/errors"
)

// SessionBackend abstracts persistence for planning session payloads.
// Get returns appErrors.ErrCacheMiss when the key is absent or expired.
type SessionBackend interface {
	Get(ctx context.Context, id string, dest interface{}) error
	Set(ctx context.Context, id string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// SessionStore keeps planning sessions between requests and records lookup metrics.
type SessionStore struct {
	backend SessionBackend
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSessionStore constructs a session store. A nil backend keeps sessions in process memory.
func NewSessionStore(backend SessionBackend, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backend = NewMemorySessionBackend()
	}
	return &SessionStore{backend: backend, metrics: metrics, ttl: ttl, logger: logger}
}

// TTL returns how long an untouched session survives.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Load fetches a session. A missing session maps to ErrSessionExpired.
func (s *SessionStore) Load(ctx context.Context, id string) (*PlanningSession, error) {
	start := time.Now()
	var session PlanningSession
	err := s.backend.Get(ctx, id, &session)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation(false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrSessionExpired, "planning session not found or expired")
		}
		s.logger.Warn("session load failed", zap.String("session_id", id), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planning session")
	}
	s.metrics.RecordCacheOperation(true, duration)
	return &session, nil
}

// Save stores the session and refreshes its expiry.
func (s *SessionStore) Save(ctx context.Context, session *PlanningSession) error {
	session.ExpiresAt = time.Now().UTC().Add(s.ttl)
	start := time.Now()
	err := s.backend.Set(ctx, session.ID, session, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("session save failed", zap.String("session_id", session.ID), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store planning session")
	}
	return nil
}

// Delete discards a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete planning session")
	}
	return nil
}

type memorySessionEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemorySessionBackend is an in-process SessionBackend used when Redis is disabled.
type MemorySessionBackend struct {
	mu    sync.RWMutex
	items map[string]memorySessionEntry
	now   func() time.Time
}

// NewMemorySessionBackend builds an empty in-memory backend.
func NewMemorySessionBackend() *MemorySessionBackend {
	return &MemorySessionBackend{items: make(map[string]memorySessionEntry), now: time.Now}
}

// Get decodes the stored payload into dest.
func (b *MemorySessionBackend) Get(ctx context.Context, id string, dest interface{}) error {
	b.mu.RLock()
	entry, ok := b.items[id]
	b.mu.RUnlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if b.now().After(entry.expiresAt) {
		_ = b.Delete(ctx, id)
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(entry.payload, dest)
}

// Set encodes value so callers never share state with the stored copy.
func (b *MemorySessionBackend) Set(_ context.Context, id string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[id] = memorySessionEntry{payload: payload, expiresAt: b.now().Add(ttl)}
	return nil
}

// Delete removes a stored payload.
func (b *MemorySessionBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	delete(b.items, id)
	b.mu.Unlock()
	return nil
}

// Sweep drops expired payloads and returns how many were removed.
func (b *MemorySessionBackend) Sweep() int {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for id, entry := range b.items {
		if now.After(entry.expiresAt) {
			delete(b.items, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps on every tick until ctx is cancelled.
func (b *MemorySessionBackend) RunSweeper(ctx context.Context, every time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := b.Sweep(); removed > 0 {
				logger.Debug("expired planning sessions swept", zap.Int("removed", removed))
			}
		}
	}
}
