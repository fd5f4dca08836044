package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"twitterapi/internal/config"
	"twitterapi/internal/db"
	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/logging"
	"twitterapi/internal/service"
)

// SeedFile is the layout of the seed document.
type SeedFile struct {
	Users []SeedUser `json:"users"`
}

// SeedUser is one account to create along with the tweets it posts.
type SeedUser struct {
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Bio      string   `json:"bio"`
	Website  string   `json:"website"`
	Location string   `json:"location"`
	Tweets   []string `json:"tweets"`
}

func main() {
	source := flag.String("file", "seed.json", "path or http(s) URL of the seed document")
	flag.Parse()

	cfg := config.Load()
	logger := logging.WithService(logging.New(cfg.LogLevel, cfg.LogFormat), cfg.Env).WithField("cmd", "seed")

	if err := run(cfg, logger, *source); err != nil {
		logger.WithError(err).Error("seed failed")
		os.Exit(1)
	}
}

// run seeds the configured store from source.
func run(cfg *config.Config, logger logrus.FieldLogger, source string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seed, err := loadSeed(ctx, source)
	if err != nil {
		return fmt.Errorf("load seed document: %w", err)
	}
	logger.WithField("users", len(seed.Users)).Infof("loaded seed document from %s", source)

	store, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.WithError(err).Warn("close store")
		}
	}()

	userService := service.NewUserService(store.Users, nil, cfg.CacheTTL, cfg.BcryptCost, logger)
	tweetService := service.NewTweetService(store.Tweets, logger)

	created, skipped, tweets := 0, 0, 0
	for _, su := range seed.Users {
		user, err := userService.Register(ctx, service.RegisterInput{
			Name:     su.Name,
			Username: su.Username,
			Email:    su.Email,
			Password: su.Password,
			Bio:      su.Bio,
			Website:  su.Website,
			Location: su.Location,
		})
		if err != nil {
			var verr *apperrors.ValidationError
			if errors.Is(err, apperrors.ErrUserAlreadyExists) || errors.As(err, &verr) {
				logger.WithError(err).WithField("username", su.Username).Warn("skipping user")
				skipped++
				continue
			}
			return fmt.Errorf("create user %q: %w", su.Username, err)
		}
		created++

		for _, text := range su.Tweets {
			if _, err := tweetService.CreateTweet(ctx, user, text); err != nil {
				logger.WithError(err).WithField("username", su.Username).Warn("skipping tweet")
				continue
			}
			tweets++
		}
	}

	logger.WithFields(logrus.Fields{
		"created": created,
		"skipped": skipped,
		"tweets":  tweets,
	}).Info("seed completed")
	return nil
}

// loadSeed reads the seed document from a local file or over HTTP.
func loadSeed(ctx context.Context, source string) (*SeedFile, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch seed: unexpected status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed: %w", err)
		}
		r = f
	}
	defer r.Close()

	var seed SeedFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}
