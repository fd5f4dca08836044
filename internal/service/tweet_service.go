package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/media"
	"twitterapi/internal/model"
	"twitterapi/internal/repository"
)

// TweetService exposes tweet and like operations.
type TweetService interface {
	CreateTweet(ctx context.Context, author *model.User, text string) (*model.Tweet, error)
	ListTweets(ctx context.Context) ([]model.Tweet, error)
	ListUserTweets(ctx context.Context, userID string) ([]model.Tweet, error)
	AttachImage(ctx context.Context, caller *model.User, tweetID string, raw []byte) error
	Image(ctx context.Context, tweetID string) ([]byte, error)
	Like(ctx context.Context, caller *model.User, tweetID string) error
	Unlike(ctx context.Context, caller *model.User, tweetID string) error
}

type tweetService struct {
	repo   repository.TweetRepository
	logger logrus.FieldLogger
}

func NewTweetService(repo repository.TweetRepository, logger logrus.FieldLogger) TweetService {
	return &tweetService{repo: repo, logger: logger}
}

func (s *tweetService) CreateTweet(ctx context.Context, author *model.User, text string) (*model.Tweet, error) {
	tweet, err := model.NewTweet(author, text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, tweet); err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	return tweet, nil
}

func (s *tweetService) ListTweets(ctx context.Context) ([]model.Tweet, error) {
	return s.repo.List(ctx)
}

func (s *tweetService) ListUserTweets(ctx context.Context, userID string) ([]model.Tweet, error) {
	return s.repo.ListByUser(ctx, userID)
}

// AttachImage resizes raw and stores it on the tweet. Only the author may do so.
func (s *tweetService) AttachImage(ctx context.Context, caller *model.User, tweetID string, raw []byte) error {
	tweet, err := s.repo.FindByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if tweet.User != caller.ID {
		return apperrors.ErrForbidden
	}

	image, err := media.ResizeTweetImage(raw)
	if err != nil {
		return err
	}
	return s.repo.SetImage(ctx, tweetID, image)
}

func (s *tweetService) Image(ctx context.Context, tweetID string) ([]byte, error) {
	tweet, err := s.repo.FindByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if len(tweet.Image) == 0 {
		return nil, apperrors.ErrNoImage
	}
	return tweet.Image, nil
}

func (s *tweetService) Like(ctx context.Context, caller *model.User, tweetID string) error {
	return s.repo.AddLike(ctx, tweetID, caller.ID)
}

func (s *tweetService) Unlike(ctx context.Context, caller *model.User, tweetID string) error {
	return s.repo.RemoveLike(ctx, tweetID, caller.ID)
}
