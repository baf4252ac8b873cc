package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInsufficientStock_Details(t *testing.T) {
	err := NewInsufficientStock("cheese", "125.0000", "100.0000")

	assert.Equal(t, CodeInsufficientStock, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "cheese", err.Details["item_id"])
	assert.Equal(t, "125.0000", err.Details["requested"])
	assert.Equal(t, "100.0000", err.Details["available"])
	assert.Contains(t, err.Error(), "requested 125.0000, available 100.0000")
}

func TestNewInvalidStateTransition(t *testing.T) {
	err := NewInvalidStateTransition("transfer", "t-1", "Completed", "Pending")

	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Equal(t, "Completed", err.Details["status"])
	assert.Equal(t, "Pending", err.Details["expected"])
	assert.True(t, IsInvalidStateTransition(err))
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil))
	})

	t.Run("app errors pass through", func(t *testing.T) {
		orig := NewValidation("bad")
		wrapped := fmt.Errorf("create: %w", orig)
		assert.Same(t, wrapped, Wrap(wrapped))
		assert.True(t, IsValidation(Wrap(wrapped)))
	})

	t.Run("driver errors become store failures", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause)

		appErr, ok := AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, CodeStoreFailure, appErr.Code)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("deadline is a store failure with reason", func(t *testing.T) {
		err := Wrap(fmt.Errorf("exec: %w", context.DeadlineExceeded))

		appErr, ok := AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, CodeStoreFailure, appErr.Code)
		assert.Equal(t, "timeout", appErr.Details["reason"])
	})
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(NewNotFound("item", 1)))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}
