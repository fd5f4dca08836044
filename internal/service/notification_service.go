package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"twitterapi/internal/model"
	"twitterapi/internal/notify"
	"twitterapi/internal/repository"
)

// NotificationService stores notifications and pushes them to live subscribers.
type NotificationService interface {
	Create(ctx context.Context, sender *model.User, receiverID, notificationType, postText string) (*model.Notification, error)
	List(ctx context.Context) ([]model.Notification, error)
	ListReceived(ctx context.Context, receiverID string) ([]model.Notification, error)
	ListSent(ctx context.Context, senderID string) ([]model.Notification, error)
	Subscribe(receiverID string) (<-chan []byte, func(), error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	broker notify.Broker
	logger logrus.FieldLogger
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, broker notify.Broker, logger logrus.FieldLogger) NotificationService {
	return &notificationService{
		repo:   repo,
		users:  users,
		broker: broker,
		logger: logger,
	}
}

// Create persists a notification from sender to receiverID. A failed publish
// is logged and does not fail the request.
func (s *notificationService) Create(ctx context.Context, sender *model.User, receiverID, notificationType, postText string) (*model.Notification, error) {
	n, err := model.NewNotification(sender, receiverID, notificationType, postText)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, n.NotReceiverID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if err := s.broker.Publish(ctx, n); err != nil {
		s.logger.WithError(err).WithField("notification_id", n.ID).Warn("publish notification failed")
	}
	return n, nil
}

func (s *notificationService) List(ctx context.Context) ([]model.Notification, error) {
	return s.repo.List(ctx)
}

func (s *notificationService) ListReceived(ctx context.Context, receiverID string) ([]model.Notification, error) {
	return s.repo.ListByReceiver(ctx, receiverID)
}

func (s *notificationService) ListSent(ctx context.Context, senderID string) ([]model.Notification, error) {
	return s.repo.ListBySender(ctx, senderID)
}

func (s *notificationService) Subscribe(receiverID string) (<-chan []byte, func(), error) {
	return s.broker.Subscribe(receiverID)
}
