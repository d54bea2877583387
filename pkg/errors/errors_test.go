package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsPlainErrorsAsInternal(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCloneMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Clone(ErrNotFound, "user not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "user not found", FromError(err).Message)
}

func TestWrapAsKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapAs(cause, ErrStorageUnavailable, "save failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, "save failed: disk full", err.Error())
}
