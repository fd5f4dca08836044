package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"twitterapi/internal/auth"
	"twitterapi/internal/service"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notificationService service.NotificationService
	upgrader            websocket.Upgrader
	logger              logrus.FieldLogger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(notificationService service.NotificationService, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// CreateNotificationRequest represents a notification sent by the current user.
type CreateNotificationRequest struct {
	NotReceiverID    string `json:"notReceiverId" validate:"required"`
	NotificationType string `json:"notificationType" validate:"required"`
	PostText         string `json:"postText"`
}

// Create godoc
// @Summary Send a notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNotificationRequest true "Notification"
// @Success 201 {object} model.Notification
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notification [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	var req CreateNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	n, err := h.notificationService.Create(c.Request().Context(), auth.CurrentUser(c), req.NotReceiverID, req.NotificationType, req.PostText)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// List godoc
// @Summary List all notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} model.Notification
// @Failure 500 {object} errors.ErrorResponse
// @Router /notification [get]
func (h *NotificationHandler) List(c echo.Context) error {
	notifications, err := h.notificationService.List(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// ListReceived godoc
// @Summary List notifications received by a user
// @Tags notifications
// @Produce json
// @Param id path string true "Receiver user ID"
// @Success 200 {array} model.Notification
// @Failure 500 {object} errors.ErrorResponse
// @Router /notification/{id} [get]
func (h *NotificationHandler) ListReceived(c echo.Context) error {
	notifications, err := h.notificationService.ListReceived(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// ListSent godoc
// @Summary List notifications sent by the current user
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Notification
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /notification/sent [get]
func (h *NotificationHandler) ListSent(c echo.Context) error {
	notifications, err := h.notificationService.ListSent(c.Request().Context(), auth.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// Stream godoc
// @Summary Stream notifications received by the current user
// @Description Upgrades to a websocket. Each text frame is one notification as JSON. The token may be passed in the token query parameter.
// @Tags notifications
// @Security BearerAuth
// @Param token query string false "Session token"
// @Success 101
// @Failure 401 {object} errors.ErrorResponse
// @Router /notification/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	user := auth.CurrentUser(c)
	messages, cancel, err := h.notificationService.Subscribe(user.ID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.WithError(err).Debug("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	log := h.logger.WithField("user_id", user.ID)
	log.Debug("notification stream opened")

	// The client sends nothing; reading only surfaces the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Debug("notification stream closed")
			return nil
		case payload := <-messages:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.WithError(err).Debug("notification stream write failed")
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return nil
			}
		}
	}
}
