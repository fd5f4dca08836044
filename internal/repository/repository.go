package repository

import (
	"context"

	"twitterapi/internal/auth"
	"twitterapi/internal/model"
)

// UserRepository defines user persistence operations. Lookups return
// errors.ErrUserNotFound when no user matches; unique-field collisions return
// errors.ErrUserAlreadyExists.
type UserRepository interface {
	auth.TokenStore

	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	SetAvatar(ctx context.Context, id string, avatar []byte) error

	// AddFollower fails with errors.ErrAlreadyFollowing when followerID is present.
	AddFollower(ctx context.Context, userID, followerID string) error
	// RemoveFollower fails with errors.ErrNotFollowing when followerID is absent.
	RemoveFollower(ctx context.Context, userID, followerID string) error
	// AddFollowing and RemoveFollowing are idempotent.
	AddFollowing(ctx context.Context, userID, followingID string) error
	RemoveFollowing(ctx context.Context, userID, followingID string) error
}

// TweetRepository defines tweet persistence operations. Lookups return
// errors.ErrTweetNotFound when no tweet matches. Listings leave Image empty.
type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	FindByID(ctx context.Context, id string) (*model.Tweet, error)
	List(ctx context.Context) ([]model.Tweet, error)
	ListByUser(ctx context.Context, userID string) ([]model.Tweet, error)
	SetImage(ctx context.Context, id string, image []byte) error

	// AddLike fails with errors.ErrAlreadyLiked when userID is present.
	AddLike(ctx context.Context, tweetID, userID string) error
	// RemoveLike fails with errors.ErrNotLiked when userID is absent.
	RemoveLike(ctx context.Context, tweetID, userID string) error
}

// NotificationRepository defines notification persistence operations.
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	List(ctx context.Context) ([]model.Notification, error)
	ListByReceiver(ctx context.Context, receiverID string) ([]model.Notification, error)
	ListBySender(ctx context.Context, senderID string) ([]model.Notification, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users         UserRepository
	Tweets        TweetRepository
	Notifications NotificationRepository
}
