package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"twitterapi/internal/auth"
	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/media"
	"twitterapi/internal/model"
	"twitterapi/internal/service"
)

// UserHandler handles user, profile and follow endpoints.
type UserHandler struct {
	userService service.UserService
	logger      logrus.FieldLogger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// RegisterRequest represents a user registration request. Email format and
// password policy are checked by the domain model.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Bio      string `json:"bio"`
	Website  string `json:"website"`
	Location string `json:"location"`
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
		Website:  req.Website,
		Location: req.Location,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.CurrentUser(c))
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Description Accepts any of name, username, email, password, website, bio, location. Any other key is rejected.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body map[string]string true "Fields to update"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	update, err := decodeProfileUpdate(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), auth.CurrentUser(c), update)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

// decodeProfileUpdate reads a JSON object whose keys must all be updatable
// profile fields with string values.
func decodeProfileUpdate(c echo.Context) (model.ProfileUpdate, error) {
	var update model.ProfileUpdate

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return update, apperrors.NewValidationError("", "invalid request body")
	}
	if len(raw) == 0 {
		return update, apperrors.ErrInvalidUpdate
	}

	targets := map[string]**string{
		"name":     &update.Name,
		"username": &update.Username,
		"email":    &update.Email,
		"password": &update.Password,
		"website":  &update.Website,
		"bio":      &update.Bio,
		"location": &update.Location,
	}
	for key, value := range raw {
		if !slices.Contains(model.ProfileUpdateFields, key) {
			return update, apperrors.ErrInvalidUpdate
		}
		var s string
		if err := json.NewDecoder(bytes.NewReader(value)).Decode(&s); err != nil {
			return update, apperrors.NewValidationError(key, "must be a string")
		}
		*targets[key] = &s
	}
	return update, nil
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Only the account owner may delete the account.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), auth.CurrentUser(c), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}

// UploadAvatar godoc
// @Summary Upload the current user's avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image file"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 413 {object} map[string]string
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	data, err := readUpload(c, "avatar")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.userService.SetAvatar(c.Request().Context(), auth.CurrentUser(c).ID, data); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "avatar uploaded"})
}

// GetAvatar godoc
// @Summary Get a user's avatar
// @Tags users
// @Produce png
// @Param id path string true "User ID"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c echo.Context) error {
	avatar, err := h.userService.Avatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Blob(http.StatusOK, media.AvatarMIME, avatar)
}

// Follow godoc
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id}/follow [put]
func (h *UserHandler) Follow(c echo.Context) error {
	if err := h.userService.Follow(c.Request().Context(), auth.CurrentUser(c), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user has been followed"})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id}/unfollow [put]
func (h *UserHandler) Unfollow(c echo.Context) error {
	if err := h.userService.Unfollow(c.Request().Context(), auth.CurrentUser(c), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user has been unfollowed"})
}
