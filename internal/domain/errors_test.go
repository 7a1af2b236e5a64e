package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")
	storage := NewStorageError("failed to create product", cause)
	wrapped := fmt.Errorf("catalog: %w", storage)

	assert.Equal(t, KindStorage, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to create product", MessageOf(wrapped, "fallback"))

	assert.Equal(t, KindValidation, KindOf(NewValidationError("%s is required", "name")))
	assert.Equal(t, KindAuth, KindOf(NewAuthError("invalid credentials")))
	assert.Equal(t, KindUnknown, KindOf(cause))
	assert.Equal(t, "fallback", MessageOf(cause, "fallback"))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "name is required", NewValidationError("name is required").Error())
	assert.Equal(t, "boom: disk full", NewStorageError("boom", errors.New("disk full")).Error())
	assert.Equal(t, "storage", KindStorage.String())
}
