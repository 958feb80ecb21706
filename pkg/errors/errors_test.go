package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, New(CodeValidation, "bad", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, New(CodeConflict, "exists", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, New(CodeAuth, "denied", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, New(CodeStore, "down", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, New(CodeProvider, "rejected", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, New(ErrorCode("UNKNOWN"), "?", nil).HTTPStatus())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(CodeStore, "query failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root cause")
}

func TestAsAppError(t *testing.T) {
	appErr := New(CodeAuth, "denied", nil)
	assert.Same(t, appErr, AsAppError(appErr))

	wrapped := AsAppError(errors.New("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, CodeInternal, wrapped.Code)

	assert.Nil(t, AsAppError(nil))
}
