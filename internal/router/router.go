package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"twitterapi/internal/auth"
	"twitterapi/internal/config"
	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/handler"
	"twitterapi/internal/logging"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Users         *handler.UserHandler
	Auth          *handler.AuthHandler
	Tweets        *handler.TweetHandler
	Notifications *handler.NotificationHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger logrus.FieldLogger,
	jwtService *auth.JWTService,
	tokens auth.TokenStore,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	secured := auth.Gate(jwtService, tokens, auth.HeaderTokenLookup, logger)
	upload := middleware.BodyLimit(cfg.MaxUploadSize)
	loginLimiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.LoginRateLimit),
			Burst: cfg.LoginRateBurst,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error: "too many login attempts",
				Code:  "RATE_LIMITED",
			})
		},
	})

	// Users
	e.POST("/users", h.Users.Register)
	e.GET("/users", h.Users.ListUsers)
	e.POST("/users/login", h.Auth.Login, loginLimiter)
	e.POST("/users/logout", h.Auth.Logout, secured)
	e.POST("/users/logoutAll", h.Auth.LogoutAll, secured)
	e.GET("/users/me", h.Users.Me, secured)
	e.PATCH("/users/me", h.Users.UpdateMe, secured)
	e.POST("/users/me/avatar", h.Users.UploadAvatar, upload, secured)
	e.GET("/users/:id", h.Users.GetUser)
	e.DELETE("/users/:id", h.Users.DeleteUser, secured)
	e.GET("/users/:id/avatar", h.Users.GetAvatar)
	e.PUT("/users/:id/follow", h.Users.Follow, secured)
	e.PUT("/users/:id/unfollow", h.Users.Unfollow, secured)

	// Tweets
	e.GET("/tweets", h.Tweets.ListTweets)
	e.POST("/tweets", h.Tweets.CreateTweet, secured)
	e.GET("/tweets/:id", h.Tweets.ListUserTweets)
	e.GET("/tweets/:id/image", h.Tweets.GetImage)
	e.PUT("/tweets/:id/like", h.Tweets.Like, secured)
	e.PUT("/tweets/:id/unlike", h.Tweets.Unlike, secured)
	e.POST("/uploadTweetImage/:id", h.Tweets.UploadImage, upload, secured)

	// Notifications
	e.POST("/notification", h.Notifications.Create, secured)
	e.GET("/notification", h.Notifications.List)
	e.GET("/notification/sent", h.Notifications.ListSent, secured)
	e.GET("/notification/stream", h.Notifications.Stream,
		auth.Gate(jwtService, tokens, auth.HeaderOrQueryTokenLookup, logger))
	e.GET("/notification/:id", h.Notifications.ListReceived)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
