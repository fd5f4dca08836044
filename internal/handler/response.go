package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "twitterapi/internal/errors"
)

// MessageResponse is the body of successful state changes that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError maps err to its HTTP status and error body. Unexpected errors are
// logged and reported without detail.
func respondError(c echo.Context, logger logrus.FieldLogger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: message,
		Code:  "INVALID_REQUEST",
	})
}

func validationFailed(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

// bindAndValidate binds the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return validationFailed(err)
	}
	return nil
}

// readUpload returns the content of the multipart file in field.
func readUpload(c echo.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, apperrors.ErrInvalidImage
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.ErrInvalidImage
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.ErrInvalidImage
	}
	return data, nil
}
