package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/model"
)

// memoryDB holds every collection behind a single lock so set toggles on one
// document are atomic with respect to each other.
type memoryDB struct {
	mu            sync.RWMutex
	users         map[string]*model.User
	tweets        map[string]*model.Tweet
	notifications []*model.Notification
}

// NewMemoryStore builds a process-local store for development and tests.
func NewMemoryStore() *Store {
	db := &memoryDB{
		users:  make(map[string]*model.User),
		tweets: make(map[string]*model.Tweet),
	}
	return &Store{
		Users:         &memoryUserRepository{db: db},
		Tweets:        &memoryTweetRepository{db: db},
		Notifications: &memoryNotificationRepository{db: db},
	}
}

type memoryUserRepository struct {
	db *memoryDB
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.clashes(user) {
		return apperrors.ErrUserAlreadyExists
	}
	r.db.users[user.ID] = copyUser(user)
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	users := make([]model.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		c := copyUser(u)
		c.Avatar = nil
		c.PasswordHash = ""
		c.Tokens = nil
		users = append(users, *c)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *memoryUserRepository) UpdateProfile(_ context.Context, user *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if r.clashes(user) {
		return apperrors.ErrUserAlreadyExists
	}
	u.Name = user.Name
	u.Username = user.Username
	u.Email = user.Email
	u.PasswordHash = user.PasswordHash
	u.Bio = user.Bio
	u.Website = user.Website
	u.Location = user.Location
	u.UpdatedAt = time.Now().UTC()
	user.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *memoryUserRepository) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r *memoryUserRepository) SetAvatar(_ context.Context, id string, avatar []byte) error {
	return r.mutate(id, func(u *model.User) error {
		u.Avatar = slices.Clone(avatar)
		u.AvatarExists = true
		return nil
	})
}

func (r *memoryUserRepository) AddFollower(_ context.Context, userID, followerID string) error {
	return r.mutate(userID, func(u *model.User) error {
		if slices.Contains(u.Followers, followerID) {
			return apperrors.ErrAlreadyFollowing
		}
		u.Followers = append(u.Followers, followerID)
		return nil
	})
}

func (r *memoryUserRepository) RemoveFollower(_ context.Context, userID, followerID string) error {
	return r.mutate(userID, func(u *model.User) error {
		if !slices.Contains(u.Followers, followerID) {
			return apperrors.ErrNotFollowing
		}
		u.Followers = slices.DeleteFunc(u.Followers, func(id string) bool { return id == followerID })
		return nil
	})
}

func (r *memoryUserRepository) AddFollowing(_ context.Context, userID, followingID string) error {
	return r.mutate(userID, func(u *model.User) error {
		if !slices.Contains(u.Followings, followingID) {
			u.Followings = append(u.Followings, followingID)
		}
		return nil
	})
}

func (r *memoryUserRepository) RemoveFollowing(_ context.Context, userID, followingID string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.Followings = slices.DeleteFunc(u.Followings, func(id string) bool { return id == followingID })
		return nil
	})
}

func (r *memoryUserRepository) AddToken(_ context.Context, userID, token string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.Tokens = append(u.Tokens, model.SessionToken{Token: token})
		return nil
	})
}

func (r *memoryUserRepository) FindByToken(_ context.Context, userID, token string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, ok := r.db.users[userID]
	if !ok || !u.HasToken(token) {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memoryUserRepository) RemoveToken(_ context.Context, userID, token string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t model.SessionToken) bool { return t.Token == token })
		return nil
	})
}

func (r *memoryUserRepository) RemoveAllTokens(_ context.Context, userID string) error {
	return r.mutate(userID, func(u *model.User) error {
		u.Tokens = []model.SessionToken{}
		return nil
	})
}

func (r *memoryUserRepository) mutate(id string, fn func(u *model.User) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// clashes reports whether another user already holds user's username or email.
// Callers hold the write lock.
func (r *memoryUserRepository) clashes(user *model.User) bool {
	for id, u := range r.db.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || u.Email == user.Email {
			return true
		}
	}
	return false
}

type memoryTweetRepository struct {
	db *memoryDB
}

func (r *memoryTweetRepository) Create(_ context.Context, tweet *model.Tweet) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tweets[tweet.ID] = copyTweet(tweet)
	return nil
}

func (r *memoryTweetRepository) FindByID(_ context.Context, id string) (*model.Tweet, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tweets[id]
	if !ok {
		return nil, apperrors.ErrTweetNotFound
	}
	return copyTweet(t), nil
}

func (r *memoryTweetRepository) List(_ context.Context) ([]model.Tweet, error) {
	return r.find(func(*model.Tweet) bool { return true }), nil
}

func (r *memoryTweetRepository) ListByUser(_ context.Context, userID string) ([]model.Tweet, error) {
	return r.find(func(t *model.Tweet) bool { return t.User == userID }), nil
}

func (r *memoryTweetRepository) SetImage(_ context.Context, id string, image []byte) error {
	return r.mutate(id, func(t *model.Tweet) error {
		t.Image = slices.Clone(image)
		t.ImageExists = true
		return nil
	})
}

func (r *memoryTweetRepository) AddLike(_ context.Context, tweetID, userID string) error {
	return r.mutate(tweetID, func(t *model.Tweet) error {
		if slices.Contains(t.Likes, userID) {
			return apperrors.ErrAlreadyLiked
		}
		t.Likes = append(t.Likes, userID)
		return nil
	})
}

func (r *memoryTweetRepository) RemoveLike(_ context.Context, tweetID, userID string) error {
	return r.mutate(tweetID, func(t *model.Tweet) error {
		if !slices.Contains(t.Likes, userID) {
			return apperrors.ErrNotLiked
		}
		t.Likes = slices.DeleteFunc(t.Likes, func(id string) bool { return id == userID })
		return nil
	})
}

func (r *memoryTweetRepository) mutate(id string, fn func(t *model.Tweet) error) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tweets[id]
	if !ok {
		return apperrors.ErrTweetNotFound
	}
	if err := fn(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryTweetRepository) find(match func(t *model.Tweet) bool) []model.Tweet {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	tweets := []model.Tweet{}
	for _, t := range r.db.tweets {
		if match(t) {
			c := copyTweet(t)
			c.Image = nil
			tweets = append(tweets, *c)
		}
	}
	sort.Slice(tweets, func(i, j int) bool { return tweets[i].CreatedAt.After(tweets[j].CreatedAt) })
	return tweets
}

type memoryNotificationRepository struct {
	db *memoryDB
}

func (r *memoryNotificationRepository) Create(_ context.Context, notification *model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := *notification
	r.db.notifications = append(r.db.notifications, &n)
	return nil
}

func (r *memoryNotificationRepository) List(_ context.Context) ([]model.Notification, error) {
	return r.find(func(*model.Notification) bool { return true }), nil
}

func (r *memoryNotificationRepository) ListByReceiver(_ context.Context, receiverID string) ([]model.Notification, error) {
	return r.find(func(n *model.Notification) bool { return n.NotReceiverID == receiverID }), nil
}

func (r *memoryNotificationRepository) ListBySender(_ context.Context, senderID string) ([]model.Notification, error) {
	return r.find(func(n *model.Notification) bool { return n.NotSenderID == senderID }), nil
}

func (r *memoryNotificationRepository) find(match func(n *model.Notification) bool) []model.Notification {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	notifications := []model.Notification{}
	for i := len(r.db.notifications) - 1; i >= 0; i-- {
		if n := r.db.notifications[i]; match(n) {
			notifications = append(notifications, *n)
		}
	}
	return notifications
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	c.Avatar = slices.Clone(u.Avatar)
	c.Followers = slices.Clone(u.Followers)
	c.Followings = slices.Clone(u.Followings)
	return &c
}

func copyTweet(t *model.Tweet) *model.Tweet {
	c := *t
	c.Image = slices.Clone(t.Image)
	c.Likes = slices.Clone(t.Likes)
	return &c
}
