package model

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "twitterapi/internal/errors"
)

// Tweet is a post. UserID and Username are copies of the author's fields kept
// so listings need no lookup.
type Tweet struct {
	ID          string    `json:"_id" bson:"_id" gorm:"type:char(36);primaryKey"`
	User        string    `json:"user" bson:"user" gorm:"type:char(36);not null;index"`
	UserID      string    `json:"userId" bson:"userId" gorm:"type:char(36);not null"`
	Username    string    `json:"username" bson:"username" gorm:"size:255;not null"`
	Text        string    `json:"text" bson:"text" gorm:"type:text;not null"`
	Image       []byte    `json:"-" bson:"image,omitempty" gorm:"type:mediumblob"`
	ImageExists bool      `json:"imageExists" bson:"imageExists"`
	Likes       []string  `json:"likes" bson:"likes" gorm:"type:json;serializer:json"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewTweet builds a tweet authored by author.
func NewTweet(author *User, text string) (*Tweet, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text", "text is required")
	}

	now := time.Now().UTC()
	return &Tweet{
		ID:        uuid.NewString(),
		User:      author.ID,
		UserID:    author.ID,
		Username:  author.Username,
		Text:      text,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsLikedBy reports whether userID is in the likes set.
func (t *Tweet) IsLikedBy(userID string) bool {
	return slices.Contains(t.Likes, userID)
}
