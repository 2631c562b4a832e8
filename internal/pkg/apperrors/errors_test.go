package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundKeepsBothSentinels(t *testing.T) {
	err := NewResourceNotFoundError(ErrStudentNotFound, "Student not found")

	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, "Student not found", err.Error())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("find_sessions", cause)

	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "find_sessions", err.Code)
	assert.Contains(t, err.Detail(), "connection reset")
}

func TestCustomErrorFallbacks(t *testing.T) {
	assert.Equal(t, "validation failed", (&CustomError{Err: ErrValidationFailed}).Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
	assert.Empty(t, (&CustomError{}).Detail())

	err := NewExportRenderError(errors.New("bad sheet"))
	assert.ErrorIs(t, err, ErrExportRender)
	assert.Contains(t, err.Detail(), "bad sheet")
}
