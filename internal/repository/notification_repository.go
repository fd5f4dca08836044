package repository

import (
	"context"

	"gorm.io/gorm"

	"twitterapi/internal/model"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository builds a GORM-backed notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *notificationRepository) ListByReceiver(ctx context.Context, receiverID string) ([]model.Notification, error) {
	return r.find(r.db.WithContext(ctx).Where("not_receiver_id = ?", receiverID))
}

func (r *notificationRepository) ListBySender(ctx context.Context, senderID string) ([]model.Notification, error) {
	return r.find(r.db.WithContext(ctx).Where("not_sender_id = ?", senderID))
}

func (r *notificationRepository) find(q *gorm.DB) ([]model.Notification, error) {
	notifications := []model.Notification{}
	if err := q.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
