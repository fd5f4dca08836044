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

// Collection names in the document database.
const (
	UsersCollection         = "users"
	TweetsCollection        = "tweets"
	NotificationsCollection = "notifications"
)

var userListProjection = bson.M{"avatar": 0, "password": 0, "tokens": 0}

type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository builds a MongoDB-backed user repository.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{collection: db.Collection(UsersCollection)}
}

// NewMongoStore builds all repositories on one database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:         NewMongoUserRepository(db),
		Tweets:        NewMongoTweetRepository(db),
		Notifications: NewMongoNotificationRepository(db),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) List(ctx context.Context) ([]model.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().
		SetProjection(userListProjection).
		SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"name":      user.Name,
		"username":  user.Username,
		"email":     user.Email,
		"password":  user.PasswordHash,
		"bio":       user.Bio,
		"website":   user.Website,
		"location":  user.Location,
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrUserAlreadyExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetAvatar(ctx context.Context, id string, avatar []byte) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"avatar":       avatar,
		"avatarExists": true,
		"updatedAt":    time.Now().UTC(),
	}})
}

// AddFollower pushes followerID only when it is not already present, so two
// concurrent follows cannot both succeed.
func (r *mongoUserRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "followers": bson.M{"$ne": followerID}},
		bson.M{"$push": bson.M{"followers": followerID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOr(ctx, userID, apperrors.ErrAlreadyFollowing)
	}
	return nil
}

func (r *mongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "followers": followerID},
		bson.M{"$pull": bson.M{"followers": followerID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOr(ctx, userID, apperrors.ErrNotFollowing)
	}
	return nil
}

func (r *mongoUserRepository) AddFollowing(ctx context.Context, userID, followingID string) error {
	return r.updateByID(ctx, userID, bson.M{"$addToSet": bson.M{"followings": followingID}})
}

func (r *mongoUserRepository) RemoveFollowing(ctx context.Context, userID, followingID string) error {
	return r.updateByID(ctx, userID, bson.M{"$pull": bson.M{"followings": followingID}})
}

func (r *mongoUserRepository) AddToken(ctx context.Context, userID, token string) error {
	return r.updateByID(ctx, userID, bson.M{"$push": bson.M{"tokens": model.SessionToken{Token: token}}})
}

// FindByToken matches the user and the exact token in one query.
func (r *mongoUserRepository) FindByToken(ctx context.Context, userID, token string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID, "tokens.token": token})
}

func (r *mongoUserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	return r.updateByID(ctx, userID, bson.M{"$pull": bson.M{"tokens": bson.M{"token": token}}})
}

func (r *mongoUserRepository) RemoveAllTokens(ctx context.Context, userID string) error {
	return r.updateByID(ctx, userID, bson.M{"$set": bson.M{"tokens": []model.SessionToken{}}})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// missOr tells a missing user apart from a failed membership condition.
func (r *mongoUserRepository) missOr(ctx context.Context, id string, conflict error) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return conflict
}
