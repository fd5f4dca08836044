package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/model"
)

type mongoTweetRepository struct {
	collection *mongo.Collection
}

// NewMongoTweetRepository builds a MongoDB-backed tweet repository.
func NewMongoTweetRepository(db *mongo.Database) TweetRepository {
	return &mongoTweetRepository{collection: db.Collection(TweetsCollection)}
}

func (r *mongoTweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	_, err := r.collection.InsertOne(ctx, tweet)
	return err
}

func (r *mongoTweetRepository) FindByID(ctx context.Context, id string) (*model.Tweet, error) {
	var tweet model.Tweet
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTweetNotFound
		}
		return nil, err
	}
	return &tweet, nil
}

func (r *mongoTweetRepository) List(ctx context.Context) ([]model.Tweet, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoTweetRepository) ListByUser(ctx context.Context, userID string) ([]model.Tweet, error) {
	return r.find(ctx, bson.M{"user": userID})
}

func (r *mongoTweetRepository) SetImage(ctx context.Context, id string, image []byte) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"image":       image,
		"imageExists": true,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrTweetNotFound
	}
	return nil
}

func (r *mongoTweetRepository) AddLike(ctx context.Context, tweetID, userID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": tweetID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": userID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOr(ctx, tweetID, apperrors.ErrAlreadyLiked)
	}
	return nil
}

func (r *mongoTweetRepository) RemoveLike(ctx context.Context, tweetID, userID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": tweetID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOr(ctx, tweetID, apperrors.ErrNotLiked)
	}
	return nil
}

func (r *mongoTweetRepository) find(ctx context.Context, filter bson.M) ([]model.Tweet, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().
		SetProjection(bson.M{"image": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	tweets := []model.Tweet{}
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (r *mongoTweetRepository) missOr(ctx context.Context, id string, conflict error) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrTweetNotFound
	}
	return conflict
}
