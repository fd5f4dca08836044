package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrTweetNotFound is returned when a tweet is not found.
	ErrTweetNotFound = errors.New("tweet not found")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("username or email already in use")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("unable to login")
	// ErrUnauthenticated is returned when the session token is missing, invalid or revoked.
	ErrUnauthenticated = errors.New("please authenticate")
	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("not allowed to modify this resource")
	// ErrInvalidUpdate is returned when a profile update names a field that cannot change.
	ErrInvalidUpdate = errors.New("invalid updates")
	// ErrInvalidImage is returned when an upload cannot be decoded as an image.
	ErrInvalidImage = errors.New("please upload a valid image")
	// ErrNoImage is returned when a user has no avatar or a tweet has no image.
	ErrNoImage = errors.New("image does not exist")

	// ErrAlreadyLiked is returned when liking a tweet twice.
	ErrAlreadyLiked = errors.New("you have already liked this tweet")
	// ErrNotLiked is returned when unliking a tweet that was not liked.
	ErrNotLiked = errors.New("you have not liked this tweet")
	// ErrAlreadyFollowing is returned when following a user twice.
	ErrAlreadyFollowing = errors.New("you already follow this user")
	// ErrNotFollowing is returned when unfollowing a user that is not followed.
	ErrNotFollowing = errors.New("you do not follow this user")
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("you cannot follow yourself")
	// ErrSelfUnfollow is returned when a user tries to unfollow themselves.
	ErrSelfUnfollow = errors.New("you cannot unfollow yourself")
)

// ValidationError reports a field that violates a domain constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are unwrapped.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewHTTPError(http.StatusBadRequest, verr.Error(), "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrTweetNotFound):
		return NewHTTPError(http.StatusNotFound, ErrTweetNotFound.Error(), "TWEET_NOT_FOUND")
	case errors.Is(err, ErrNoImage):
		return NewHTTPError(http.StatusNotFound, ErrNoImage.Error(), "IMAGE_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidUpdate):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidUpdate.Error(), "INVALID_UPDATE")
	case errors.Is(err, ErrInvalidImage):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidImage.Error(), "INVALID_IMAGE")
	case errors.Is(err, ErrAlreadyLiked):
		return NewHTTPError(http.StatusConflict, ErrAlreadyLiked.Error(), "ALREADY_LIKED")
	case errors.Is(err, ErrNotLiked):
		return NewHTTPError(http.StatusConflict, ErrNotLiked.Error(), "NOT_LIKED")
	case errors.Is(err, ErrAlreadyFollowing):
		return NewHTTPError(http.StatusConflict, ErrAlreadyFollowing.Error(), "ALREADY_FOLLOWING")
	case errors.Is(err, ErrNotFollowing):
		return NewHTTPError(http.StatusConflict, ErrNotFollowing.Error(), "NOT_FOLLOWING")
	case errors.Is(err, ErrSelfFollow):
		return NewHTTPError(http.StatusForbidden, ErrSelfFollow.Error(), "SELF_FOLLOW")
	case errors.Is(err, ErrSelfUnfollow):
		return NewHTTPError(http.StatusForbidden, ErrSelfUnfollow.Error(), "SELF_UNFOLLOW")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
