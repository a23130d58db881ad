package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "must not be empty")

	assert.Equal(t, "invalid name: must not be empty", err.Error())
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsConfiguration(err))
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("portfolio", "abc")

	assert.Equal(t, "portfolio not found: abc", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("duplicate path %q", "/dashboard")

	assert.Equal(t, `configuration error: duplicate path "/dashboard"`, err.Error())
	assert.True(t, IsConfiguration(err))
}

func TestErrorKinds_SurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("failed to add stock: %w", NewNotFoundError("portfolio", "p1"))

	assert.True(t, IsNotFound(wrapped))

	var nf *NotFoundError
	assert.True(t, errors.As(wrapped, &nf))
	assert.Equal(t, "p1", nf.ID)
}

func TestErrorKinds_PlainError(t *testing.T) {
	err := errors.New("boom")

	assert.False(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsConfiguration(err))
}
