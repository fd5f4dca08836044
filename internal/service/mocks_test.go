package service

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"twitterapi/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) userResult(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) AddToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockUserRepository) FindByToken(ctx context.Context, userID, token string) (*model.User, error) {
	return m.userResult(m.Called(ctx, userID, token))
}

func (m *MockUserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockUserRepository) RemoveAllTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) SetAvatar(ctx context.Context, id string, avatar []byte) error {
	return m.Called(ctx, id, avatar).Error(0)
}

func (m *MockUserRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	return m.Called(ctx, userID, followerID).Error(0)
}

func (m *MockUserRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return m.Called(ctx, userID, followerID).Error(0)
}

func (m *MockUserRepository) AddFollowing(ctx context.Context, userID, followingID string) error {
	return m.Called(ctx, userID, followingID).Error(0)
}

func (m *MockUserRepository) RemoveFollowing(ctx context.Context, userID, followingID string) error {
	return m.Called(ctx, userID, followingID).Error(0)
}

// MockTweetRepository is a mock implementation of TweetRepository.
type MockTweetRepository struct {
	mock.Mock
}

func (m *MockTweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return m.Called(ctx, tweet).Error(0)
}

func (m *MockTweetRepository) FindByID(ctx context.Context, id string) (*model.Tweet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tweet), args.Error(1)
}

func (m *MockTweetRepository) List(ctx context.Context) ([]model.Tweet, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Tweet), args.Error(1)
}

func (m *MockTweetRepository) ListByUser(ctx context.Context, userID string) ([]model.Tweet, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Tweet), args.Error(1)
}

func (m *MockTweetRepository) SetImage(ctx context.Context, id string, image []byte) error {
	return m.Called(ctx, id, image).Error(0)
}

func (m *MockTweetRepository) AddLike(ctx context.Context, tweetID, userID string) error {
	return m.Called(ctx, tweetID, userID).Error(0)
}

func (m *MockTweetRepository) RemoveLike(ctx context.Context, tweetID, userID string) error {
	return m.Called(ctx, tweetID, userID).Error(0)
}

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByReceiver(ctx context.Context, receiverID string) ([]model.Notification, error) {
	args := m.Called(ctx, receiverID)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListBySender(ctx context.Context, senderID string) ([]model.Notification, error) {
	args := m.Called(ctx, senderID)
	return args.Get(0).([]model.Notification), args.Error(1)
}

// MockBroker is a mock implementation of notify.Broker.
type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(ctx context.Context, n *model.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockBroker) Subscribe(receiverID string) (<-chan []byte, func(), error) {
	args := m.Called(receiverID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(<-chan []byte), args.Get(1).(func()), args.Error(2)
}

func (m *MockBroker) Close() error {
	return m.Called().Error(0)
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
