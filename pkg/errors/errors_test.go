package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WithCause(t *testing.T) {
	cause := fmt.Errorf("queue closed")
	err := ErrServiceUnavailable.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrServiceUnavailable.Cause, "base error must not be mutated")
	assert.Equal(t, "SERVICE_UNAVAILABLE: service unavailable (caused by: queue closed)", err.Error())
	assert.True(t, Is(fmt.Errorf("wrapped: %w", err), ErrServiceUnavailable))
	assert.False(t, Is(err, ErrValidation))
}

func TestToErrorResponse(t *testing.T) {
	err := ErrValidation.WithDetail("field", "messages")

	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(err))
	assert.Equal(t, map[string]interface{}{
		"error":      "validation failed",
		"error_code": "VALIDATION_ERROR",
		"details":    map[string]interface{}{"field": "messages"},
	}, ToErrorResponse(err))
	assert.Empty(t, ErrValidation.Details)

	plain := errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(plain))
	assert.Equal(t, "INTERNAL_ERROR", ToErrorResponse(plain)["error_code"])
}

func TestRecoverPanic(t *testing.T) {
	assert.NoError(t, RecoverPanic(nil))

	err := RecoverPanic("nil map write")
	require.Error(t, err)

	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, true, appErr.Details["panic"])
	assert.Contains(t, appErr.Cause.Error(), "nil map write")
}
