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

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// NewGormStore builds all repositories on one relational database.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:         NewUserRepository(db),
		Tweets:        NewTweetRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateUserErr(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateUserErr(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.WithContext(ctx).Omit("avatar", "password", "tokens").
		Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":       user.Name,
		"username":   user.Username,
		"email":      user.Email,
		"password":   user.PasswordHash,
		"bio":        user.Bio,
		"website":    user.Website,
		"location":   user.Location,
		"updated_at": user.UpdatedAt,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.ErrUserAlreadyExists
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetAvatar(ctx context.Context, id string, avatar []byte) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"avatar":        avatar,
		"avatar_exists": true,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) AddFollower(ctx context.Context, userID, followerID string) error {
	return r.mutate(ctx, userID, "followers", func(u *model.User) error {
		if slices.Contains(u.Followers, followerID) {
			return apperrors.ErrAlreadyFollowing
		}
		u.Followers = append(u.Followers, followerID)
		return nil
	})
}

func (r *userRepository) RemoveFollower(ctx context.Context, userID, followerID string) error {
	return r.mutate(ctx, userID, "followers", func(u *model.User) error {
		if !slices.Contains(u.Followers, followerID) {
			return apperrors.ErrNotFollowing
		}
		u.Followers = slices.DeleteFunc(u.Followers, func(id string) bool { return id == followerID })
		return nil
	})
}

func (r *userRepository) AddFollowing(ctx context.Context, userID, followingID string) error {
	return r.mutate(ctx, userID, "followings", func(u *model.User) error {
		if !slices.Contains(u.Followings, followingID) {
			u.Followings = append(u.Followings, followingID)
		}
		return nil
	})
}

func (r *userRepository) RemoveFollowing(ctx context.Context, userID, followingID string) error {
	return r.mutate(ctx, userID, "followings", func(u *model.User) error {
		u.Followings = slices.DeleteFunc(u.Followings, func(id string) bool { return id == followingID })
		return nil
	})
}

func (r *userRepository) AddToken(ctx context.Context, userID, token string) error {
	return r.mutate(ctx, userID, "tokens", func(u *model.User) error {
		u.Tokens = append(u.Tokens, model.SessionToken{Token: token})
		return nil
	})
}

func (r *userRepository) FindByToken(ctx context.Context, userID, token string) (*model.User, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasToken(token) {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepository) RemoveToken(ctx context.Context, userID, token string) error {
	return r.mutate(ctx, userID, "tokens", func(u *model.User) error {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t model.SessionToken) bool { return t.Token == token })
		return nil
	})
}

func (r *userRepository) RemoveAllTokens(ctx context.Context, userID string) error {
	return r.mutate(ctx, userID, "tokens", func(u *model.User) error {
		u.Tokens = []model.SessionToken{}
		return nil
	})
}

// mutate loads one JSON set column under a row lock, applies fn and writes the
// column back within the same transaction.
func (r *userRepository) mutate(ctx context.Context, id, column string, fn func(u *model.User) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", column).Where("id = ?", id).First(&user).Error; err != nil {
			return translateUserErr(err)
		}
		if err := fn(&user); err != nil {
			return err
		}
		user.UpdatedAt = time.Now().UTC()
		return tx.Model(&user).Select(column, "updated_at").Updates(&user).Error
	})
}

func translateUserErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	return err
}
