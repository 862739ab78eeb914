package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_KeepsAppError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("Checklist not found"))

	appErr := From(wrapped)

	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Checklist not found", appErr.Message)
}

func TestFrom_UnknownErrorBecomesInternal(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.1:3306: connection refused")

	appErr := From(cause)

	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, InternalMessage, appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestAppError_JSONHidesCause(t *testing.T) {
	appErr := Internal(errors.New("secret table name"))

	body, err := json.Marshal(appErr)
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":500,"message":"Internal server error"}`, string(body))
}

func TestValidation_IncludesFieldErrors(t *testing.T) {
	appErr := Validation("Validation failed", FieldError{Field: "name", Message: "Name is required"})

	body, err := json.Marshal(appErr)
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":400,"message":"Validation failed","errors":[{"field":"name","message":"Name is required"}]}`, string(body))
}
