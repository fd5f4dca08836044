package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"twitterapi/docs"
	"twitterapi/internal/auth"
	"twitterapi/internal/cache"
	"twitterapi/internal/config"
	"twitterapi/internal/db"
	"twitterapi/internal/handler"
	"twitterapi/internal/logging"
	"twitterapi/internal/notify"
	"twitterapi/internal/router"
	"twitterapi/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Twitter API
// @version 1.0
// @description Social network API with users, tweets, follows and notifications.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	base := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger := logging.WithService(base, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("database init")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.WithError(err).Warn("close database")
		}
	}()
	logger.WithField("driver", cfg.DBDriver).Info("store ready")

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := cacheClient.Ping(ctx); err != nil {
			logger.WithError(err).Warn("redis unreachable, serving without cache")
		}
		defer cacheClient.Close()
	}

	broker := newBroker(cfg, logger)
	defer broker.Close()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(store.Users, jwtService, logger)
	userService := service.NewUserService(store.Users, cacheClient, cfg.CacheTTL, cfg.BcryptCost, logger)
	tweetService := service.NewTweetService(store.Tweets, logger)
	notificationService := service.NewNotificationService(store.Notifications, store.Users, broker, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, logger, jwtService, store.Users, router.Handlers{
		Users:         handler.NewUserHandler(userService, logger),
		Auth:          handler.NewAuthHandler(authService, logger),
		Tweets:        handler.NewTweetHandler(tweetService, logger),
		Notifications: handler.NewNotificationHandler(notificationService, logger),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = swaggerHost(cfg.SwaggerHost)
	}
	logger.Infof("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	go func() {
		addr := ":" + cfg.ServerPort
		logger.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server start")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
}

// newBroker connects to NATS when NATS_URL is set and otherwise keeps
// notification fan-out inside this process.
func newBroker(cfg *config.Config, logger logrus.FieldLogger) notify.Broker {
	if cfg.NATSURL == "" {
		return notify.NewMemoryBroker(logger)
	}
	broker, err := notify.NewNATSBroker(cfg.NATSURL, logger)
	if err != nil {
		logger.WithError(err).Warn("nats unavailable, using in-process notifications")
		return notify.NewMemoryBroker(logger)
	}
	return broker
}

// swaggerHost strips any scheme from host; swag expects host[:port].
func swaggerHost(host string) string {
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")
	return strings.TrimSuffix(host, "/")
}
