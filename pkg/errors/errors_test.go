package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := Clone(ErrConflict, "stale revision")
	got := FromError(err)
	assert.Equal(t, ErrConflict.Code, got.Code)
	assert.Equal(t, "stale revision", got.Message)
	assert.Equal(t, "conflict", ErrConflict.Message, "clone must not mutate the template")
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.True(t, errors.Is(got, sql.ErrConnDone))
}

func TestFromErrorNil(t *testing.T) {
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := Wrap(sql.ErrNoRows, ErrSessionExpired.Code, ErrSessionExpired.Status, "gone")
	assert.True(t, errors.Is(wrapped, ErrSessionExpired))
	assert.True(t, errors.Is(Clone(ErrCacheMiss, ""), ErrCacheMiss))
	assert.False(t, errors.Is(Clone(ErrCacheMiss, ""), ErrNotFound))
	assert.True(t, errors.Is(wrapped, sql.ErrNoRows))
}
