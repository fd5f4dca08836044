package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"twitterapi/internal/model"
)

type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository builds a MongoDB-backed notification repository.
func NewMongoNotificationRepository(db *mongo.Database) NotificationRepository {
	return &mongoNotificationRepository{collection: db.Collection(NotificationsCollection)}
}

func (r *mongoNotificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

func (r *mongoNotificationRepository) List(ctx context.Context) ([]model.Notification, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoNotificationRepository) ListByReceiver(ctx context.Context, receiverID string) ([]model.Notification, error) {
	return r.find(ctx, bson.M{"notReceiverId": receiverID})
}

func (r *mongoNotificationRepository) ListBySender(ctx context.Context, senderID string) ([]model.Notification, error) {
	return r.find(ctx, bson.M{"notSenderId": senderID})
}

func (r *mongoNotificationRepository) find(ctx context.Context, filter bson.M) ([]model.Notification, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	notifications := []model.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
