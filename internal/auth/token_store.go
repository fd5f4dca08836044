package auth

import (
	"context"

	"twitterapi/internal/model"
)

// TokenStore keeps the per-user list of issued session tokens. A token is valid
// only while it is present in the list, so removing it revokes it even though its
// signature still verifies.
type TokenStore interface {
	AddToken(ctx context.Context, userID, token string) error
	FindByToken(ctx context.Context, userID, token string) (*model.User, error)
	RemoveToken(ctx context.Context, userID, token string) error
	RemoveAllTokens(ctx context.Context, userID string) error
}
