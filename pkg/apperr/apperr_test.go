package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad input")))
	assert.True(t, IsConflict(Conflict("already done")))
	assert.True(t, IsPermission(Permission("no")))
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsTransport(Transport("db down", errors.New("dial tcp"))))

	assert.False(t, IsConflict(Validation("bad input")))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("x")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Permission("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Transport("x", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestUnwrapAndWrapping(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Transport("db down", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "db down: dial tcp", err.Error())

	// Classification survives further wrapping.
	wrapped := fmt.Errorf("while sending: %w", err)
	assert.True(t, IsTransport(wrapped))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(wrapped))
}
