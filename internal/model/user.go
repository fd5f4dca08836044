package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionToken is one issued login token. A user holds one per signed-in device.
type SessionToken struct {
	Token string `json:"token" bson:"token"`
}

// User is an account on the network.
type User struct {
	ID           string         `json:"_id" bson:"_id" gorm:"type:char(36);primaryKey"`
	Name         string         `json:"name" bson:"name" gorm:"size:255;not null"`
	Username     string         `json:"username" bson:"username" gorm:"uniqueIndex;size:255;not null"`
	Email        string         `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" bson:"password" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Tokens       []SessionToken `json:"-" bson:"tokens" gorm:"type:json;serializer:json"`
	Avatar       []byte         `json:"-" bson:"avatar,omitempty" gorm:"type:mediumblob"`
	AvatarExists bool           `json:"avatarExists" bson:"avatarExists"`
	Bio          string         `json:"bio,omitempty" bson:"bio,omitempty" gorm:"type:text"`
	Website      string         `json:"website,omitempty" bson:"website,omitempty" gorm:"size:255"`
	Location     string         `json:"location,omitempty" bson:"location,omitempty" gorm:"size:255"`
	Followers    []string       `json:"followers" bson:"followers" gorm:"type:json;serializer:json"`
	Followings   []string       `json:"followings" bson:"followings" gorm:"type:json;serializer:json"`
	CreatedAt    time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// NewUser builds a user ready to be persisted. passwordHash must already be hashed.
func NewUser(name, username string, email Email, passwordHash string) (*User, error) {
	name, err := NewName(name)
	if err != nil {
		return nil, err
	}
	username, err = NewUsername(username)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Name:         name,
		Username:     username,
		Email:        email.String(),
		PasswordHash: passwordHash,
		Tokens:       []SessionToken{},
		Followers:    []string{},
		Followings:   []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword reports whether plaintext matches the stored hash.
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}

// HasToken reports whether token is still in the user's token list.
func (u *User) HasToken(token string) bool {
	return slices.ContainsFunc(u.Tokens, func(t SessionToken) bool { return t.Token == token })
}

// IsFollowedBy reports whether userID is among the followers.
func (u *User) IsFollowedBy(userID string) bool {
	return slices.Contains(u.Followers, userID)
}

// IsFollowing reports whether the user follows userID.
func (u *User) IsFollowing(userID string) bool {
	return slices.Contains(u.Followings, userID)
}

// ProfileUpdate carries the profile fields a user may change. Nil fields are left as is.
type ProfileUpdate struct {
	Name     *string
	Username *string
	Email    *string
	Password *string
	Website  *string
	Bio      *string
	Location *string
}

// ProfileUpdateFields lists the JSON keys accepted for a profile update.
var ProfileUpdateFields = []string{"name", "username", "email", "password", "website", "bio", "location"}
