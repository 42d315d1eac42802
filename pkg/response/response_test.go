package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBusinessError(t *testing.T) {
	cause := errors.New("boom")
	err := NewBusinessError(
		WithErrorCode(NotFound),
		WithErrorMessage("article not found"),
		WithError(cause),
	)

	assert.Equal(t, NotFound, err.Code)
	assert.Equal(t, "article not found: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestNewBusinessError_Defaults(t *testing.T) {
	err := NewBusinessError()

	assert.Equal(t, Fail, err.Code)
	assert.Equal(t, "business error", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestResponseCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ResponseCode
		want int
	}{
		{Success, http.StatusOK},
		{ParseError, http.StatusBadRequest},
		{InvalidParameter, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Fail, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code %d", tt.code)
	}
}

func TestFromError_HidesCause(t *testing.T) {
	err := NewBusinessError(
		WithErrorCode(Forbidden),
		WithErrorMessage("not yours"),
		WithError(errors.New("owner 3 != actor 4")),
	)

	resp := FromError(err)
	assert.Equal(t, "not yours", resp.Message)
	assert.Equal(t, Forbidden, resp.Code)
	assert.Nil(t, resp.Data)
}
