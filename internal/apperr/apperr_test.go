package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorIs(t *testing.T) {
	err := Invalid("title", "is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "validation failed: title: is required", err.Error())
}

func TestValidationErrorAddKeepsFirst(t *testing.T) {
	v := &ValidationError{}
	require.NoError(t, v.Err())

	v.Add("title", "is required")
	v.Add("title", "too long")
	v.Add("category", "category not found")

	err := v.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: category: category not found; title: is required", err.Error())
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Storage("find tasks", cause)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "find tasks")
}

func TestUnauthorizedReason(t *testing.T) {
	err := Unauthorized("must be logged in")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "unauthorized: must be logged in", err.Error())
}
