package apperror_test

import (
	"errors"
	"net/http"
	"testing"

	"go-hr-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	sentinel := errors.New("boom")

	t.Run("Unwrap reaches the cause", func(t *testing.T) {
		err := apperror.Unavailable(sentinel)
		assert.True(t, errors.Is(err, sentinel))
		assert.Equal(t, http.StatusServiceUnavailable, err.Code)
		assert.NotContains(t, err.Error(), "boom")
	})

	t.Run("Validation keeps fields", func(t *testing.T) {
		err := apperror.Validation("Validation failed", map[string]string{"email": "required"})
		assert.Equal(t, http.StatusBadRequest, err.Code)
		assert.Equal(t, "required", err.Fields["email"])
	})

	t.Run("errors.As finds AppError", func(t *testing.T) {
		var wrapped error = apperror.NotFound("Candidate not found")
		var appErr *apperror.AppError
		assert.True(t, errors.As(wrapped, &appErr))
		assert.Equal(t, http.StatusNotFound, appErr.Code)
	})
}
