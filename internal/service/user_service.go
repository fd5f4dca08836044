package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"twitterapi/internal/cache"
	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/media"
	"twitterapi/internal/model"
	"twitterapi/internal/repository"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Bio      string
	Website  string
	Location string
}

// UserService exposes user and follow operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, update model.ProfileUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, caller *model.User, id string) error
	SetAvatar(ctx context.Context, userID string, raw []byte) error
	Avatar(ctx context.Context, id string) ([]byte, error)
	Follow(ctx context.Context, caller *model.User, targetID string) error
	Unfollow(ctx context.Context, caller *model.User, targetID string) error
}

type userService struct {
	repo       repository.UserRepository
	cache      *cache.Client
	cacheTTL   time.Duration
	bcryptCost int
	logger     logrus.FieldLogger
}

// NewUserService builds a UserService. cache may be nil.
func NewUserService(repo repository.UserRepository, cache *cache.Client, cacheTTL time.Duration, bcryptCost int, logger logrus.FieldLogger) UserService {
	return &userService{
		repo:       repo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) invalidate(ctx context.Context, ids ...string) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.cacheKey(id))
	}
	_ = s.cache.Delete(ctx, keys...)
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email, err := model.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := model.NewPassword(in.Password)
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := model.NewUser(in.Name, in.Username, email, hash)
	if err != nil {
		return nil, err
	}
	user.Bio = strings.TrimSpace(in.Bio)
	user.Website = strings.TrimSpace(in.Website)
	user.Location = strings.TrimSpace(in.Location)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// GetUser returns the public view of a user, served from cache when possible.
func (s *userService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, s.cacheTTL)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

// UpdateProfile validates and applies the non-nil fields of update to user.
func (s *userService) UpdateProfile(ctx context.Context, user *model.User, update model.ProfileUpdate) (*model.User, error) {
	updated := *user

	if update.Name != nil {
		name, err := model.NewName(*update.Name)
		if err != nil {
			return nil, err
		}
		updated.Name = name
	}
	if update.Username != nil {
		username, err := model.NewUsername(*update.Username)
		if err != nil {
			return nil, err
		}
		updated.Username = username
	}
	if update.Email != nil {
		email, err := model.NewEmail(*update.Email)
		if err != nil {
			return nil, err
		}
		updated.Email = email.String()
	}
	if update.Password != nil {
		password, err := model.NewPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		hash, err := password.Hash(s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updated.PasswordHash = hash
	}
	if update.Website != nil {
		updated.Website = strings.TrimSpace(*update.Website)
	}
	if update.Bio != nil {
		updated.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.Location != nil {
		updated.Location = strings.TrimSpace(*update.Location)
	}

	if err := s.repo.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.ID)
	return &updated, nil
}

// DeleteUser removes the account identified by id. Only the account owner may
// delete it.
func (s *userService) DeleteUser(ctx context.Context, caller *model.User, id string) error {
	if caller.ID != id {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.WithField("user_id", id).Info("user deleted")
	return nil
}

// SetAvatar resizes raw and stores it as the user's avatar.
func (s *userService) SetAvatar(ctx context.Context, userID string, raw []byte) error {
	avatar, err := media.ResizeAvatar(raw)
	if err != nil {
		return err
	}
	if err := s.repo.SetAvatar(ctx, userID, avatar); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *userService) Avatar(ctx context.Context, id string) ([]byte, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, apperrors.ErrNoImage
	}
	return user.Avatar, nil
}

// Follow records caller as a follower of targetID and targetID as one of
// caller's followings. If the second write fails the first is undone.
func (s *userService) Follow(ctx context.Context, caller *model.User, targetID string) error {
	if caller.ID == targetID {
		return apperrors.ErrSelfFollow
	}

	if err := s.repo.AddFollower(ctx, targetID, caller.ID); err != nil {
		return err
	}
	if err := s.repo.AddFollowing(ctx, caller.ID, targetID); err != nil {
		if undoErr := s.repo.RemoveFollower(ctx, targetID, caller.ID); undoErr != nil {
			s.logger.WithError(undoErr).WithFields(logrus.Fields{
				"user_id":   caller.ID,
				"target_id": targetID,
			}).Error("follow left half applied")
		}
		return fmt.Errorf("add following: %w", err)
	}

	s.invalidate(ctx, caller.ID, targetID)
	return nil
}

// Unfollow reverses Follow with the same compensation on partial failure.
func (s *userService) Unfollow(ctx context.Context, caller *model.User, targetID string) error {
	if caller.ID == targetID {
		return apperrors.ErrSelfUnfollow
	}

	if err := s.repo.RemoveFollower(ctx, targetID, caller.ID); err != nil {
		return err
	}
	if err := s.repo.RemoveFollowing(ctx, caller.ID, targetID); err != nil {
		if undoErr := s.repo.AddFollower(ctx, targetID, caller.ID); undoErr != nil {
			s.logger.WithError(undoErr).WithFields(logrus.Fields{
				"user_id":   caller.ID,
				"target_id": targetID,
			}).Error("unfollow left half applied")
		}
		return fmt.Errorf("remove following: %w", err)
	}

	s.invalidate(ctx, caller.ID, targetID)
	return nil
}
