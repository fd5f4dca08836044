package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", NewValidationError("email", "invalid email"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"wrapped validation", fmt.Errorf("create user: %w", NewValidationError("password", "too short")), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrapped tweet not found", fmt.Errorf("like: %w", ErrTweetNotFound), http.StatusNotFound, "TWEET_NOT_FOUND"},
		{"duplicate", ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"already liked", ErrAlreadyLiked, http.StatusConflict, "ALREADY_LIKED"},
		{"not liked", ErrNotLiked, http.StatusConflict, "NOT_LIKED"},
		{"self follow", ErrSelfFollow, http.StatusForbidden, "SELF_FOLLOW"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetails(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("mongo: dial tcp 10.0.0.3:27017"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Error)
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "email: invalid email", NewValidationError("email", "invalid email").Error())
	assert.Equal(t, "bad input", NewValidationError("", "bad input").Error())
}
