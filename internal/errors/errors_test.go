package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")

	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "cannot process", map[string]string{"table": "a.csv"})

	require.NotNil(t, err.Details)
	details, ok := err.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "a.csv", details["table"])
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewUpstreamError("uploads", cause)

	assert.Contains(t, err.Error(), "uploads")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)

	var upstream *UpstreamError
	wrapped := fmt.Errorf("fetch record: %w", err)
	require.True(t, errors.As(wrapped, &upstream))
	assert.Equal(t, "uploads", upstream.Service)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("record_id", "is required")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	ve, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "record_id", ve.Field)
}
