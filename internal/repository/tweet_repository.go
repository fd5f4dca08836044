package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/model"
)

type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository builds a GORM-backed tweet repository.
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return r.db.WithContext(ctx).Create(tweet).Error
}

func (r *tweetRepository) FindByID(ctx context.Context, id string) (*model.Tweet, error) {
	var tweet model.Tweet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tweet).Error; err != nil {
		return nil, translateTweetErr(err)
	}
	return &tweet, nil
}

func (r *tweetRepository) List(ctx context.Context) ([]model.Tweet, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *tweetRepository) ListByUser(ctx context.Context, userID string) ([]model.Tweet, error) {
	return r.find(r.db.WithContext(ctx).Where(&model.Tweet{User: userID}))
}

func (r *tweetRepository) SetImage(ctx context.Context, id string, image []byte) error {
	res := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("id = ?", id).Updates(map[string]interface{}{
		"image":        image,
		"image_exists": true,
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTweetNotFound
	}
	return nil
}

func (r *tweetRepository) AddLike(ctx context.Context, tweetID, userID string) error {
	return r.mutateLikes(ctx, tweetID, func(likes []string) ([]string, error) {
		if slices.Contains(likes, userID) {
			return nil, apperrors.ErrAlreadyLiked
		}
		return append(likes, userID), nil
	})
}

func (r *tweetRepository) RemoveLike(ctx context.Context, tweetID, userID string) error {
	return r.mutateLikes(ctx, tweetID, func(likes []string) ([]string, error) {
		if !slices.Contains(likes, userID) {
			return nil, apperrors.ErrNotLiked
		}
		return slices.DeleteFunc(likes, func(id string) bool { return id == userID }), nil
	})
}

func (r *tweetRepository) mutateLikes(ctx context.Context, id string, fn func(likes []string) ([]string, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tweet model.Tweet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").Where("id = ?", id).First(&tweet).Error; err != nil {
			return translateTweetErr(err)
		}
		likes, err := fn(tweet.Likes)
		if err != nil {
			return err
		}
		tweet.Likes = likes
		tweet.UpdatedAt = time.Now().UTC()
		return tx.Model(&tweet).Select("likes", "updated_at").Updates(&tweet).Error
	})
}

func (r *tweetRepository) find(q *gorm.DB) ([]model.Tweet, error) {
	tweets := []model.Tweet{}
	if err := q.Omit("image").Order("created_at DESC").Find(&tweets).Error; err != nil {
		return nil, err
	}
	return tweets, nil
}

func translateTweetErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrTweetNotFound
	}
	return err
}
