package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"twitterapi/internal/auth"
	"twitterapi/internal/model"
	"twitterapi/internal/service"
)

// AuthHandler handles login and logout endpoints.
type AuthHandler struct {
	authService service.AuthService
	logger      logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed-in user and the newly issued token.
type LoginResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Login godoc
// @Summary Login user
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} map[string]string
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{User: user, Token: token})
}

// Logout godoc
// @Summary Revoke the token used for this request
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user := auth.CurrentUser(c)
	if err := h.authService.Logout(c.Request().Context(), user.ID, auth.CurrentToken(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// LogoutAll godoc
// @Summary Revoke every token of the current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/logoutAll [post]
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	user := auth.CurrentUser(c)
	if err := h.authService.LogoutAll(c.Request().Context(), user.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out of all sessions"})
}
