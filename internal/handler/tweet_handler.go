package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"twitterapi/internal/auth"
	"twitterapi/internal/media"
	"twitterapi/internal/service"
)

// TweetHandler handles tweet endpoints.
type TweetHandler struct {
	tweetService service.TweetService
	logger       logrus.FieldLogger
}

// NewTweetHandler creates a new tweet handler.
func NewTweetHandler(tweetService service.TweetService, logger logrus.FieldLogger) *TweetHandler {
	return &TweetHandler{tweetService: tweetService, logger: logger}
}

// CreateTweetRequest represents a new tweet.
type CreateTweetRequest struct {
	Text string `json:"text" validate:"required"`
}

// ListTweets godoc
// @Summary List all tweets, newest first
// @Tags tweets
// @Produce json
// @Success 200 {array} model.Tweet
// @Failure 500 {object} errors.ErrorResponse
// @Router /tweets [get]
func (h *TweetHandler) ListTweets(c echo.Context) error {
	tweets, err := h.tweetService.ListTweets(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tweets)
}

// ListUserTweets godoc
// @Summary List the tweets of a user
// @Tags tweets
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} model.Tweet
// @Failure 500 {object} errors.ErrorResponse
// @Router /tweets/{id} [get]
func (h *TweetHandler) ListUserTweets(c echo.Context) error {
	tweets, err := h.tweetService.ListUserTweets(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, tweets)
}

// CreateTweet godoc
// @Summary Post a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTweetRequest true "Tweet"
// @Success 201 {object} model.Tweet
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /tweets [post]
func (h *TweetHandler) CreateTweet(c echo.Context) error {
	var req CreateTweetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tweet, err := h.tweetService.CreateTweet(c.Request().Context(), auth.CurrentUser(c), req.Text)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, tweet)
}

// UploadImage godoc
// @Summary Attach an image to a tweet
// @Description Only the tweet's author may attach an image.
// @Tags tweets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tweet ID"
// @Param upload formData file true "Image file"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} map[string]string
// @Router /uploadTweetImage/{id} [post]
func (h *TweetHandler) UploadImage(c echo.Context) error {
	data, err := readUpload(c, "upload")
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.tweetService.AttachImage(c.Request().Context(), auth.CurrentUser(c), c.Param("id"), data); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "image uploaded"})
}

// GetImage godoc
// @Summary Get a tweet's image
// @Tags tweets
// @Produce jpeg
// @Param id path string true "Tweet ID"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /tweets/{id}/image [get]
func (h *TweetHandler) GetImage(c echo.Context) error {
	image, err := h.tweetService.Image(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.Blob(http.StatusOK, media.TweetImageMIME, image)
}

// Like godoc
// @Summary Like a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tweet ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tweets/{id}/like [put]
func (h *TweetHandler) Like(c echo.Context) error {
	if err := h.tweetService.Like(c.Request().Context(), auth.CurrentUser(c), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "tweet has been liked"})
}

// Unlike godoc
// @Summary Remove a like from a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tweet ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /tweets/{id}/unlike [put]
func (h *TweetHandler) Unlike(c echo.Context) error {
	if err := h.tweetService.Unlike(c.Request().Context(), auth.CurrentUser(c), c.Param("id")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "tweet has been unliked"})
}
