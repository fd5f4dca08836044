package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/model"
)

// Token lookups understood by Gate.
const (
	HeaderTokenLookup        = "header:" + echo.HeaderAuthorization + ":Bearer "
	HeaderOrQueryTokenLookup = HeaderTokenLookup + ",query:token"
)

const (
	claimsContextKey = "auth_claims"
	tokenContextKey  = "auth_token"
	userContextKey   = "auth_user"
)

// Gate authenticates a request in two steps: the bearer token signature is
// verified, then the user named by the token is loaded and the exact token string
// must still be in that user's token list. On success the user and token are
// stored on the echo context; see CurrentUser and CurrentToken.
func Gate(jwtService *JWTService, store TokenStore, tokenLookup string, logger logrus.FieldLogger) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: tokenLookup,
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(raw)
			if err != nil {
				return nil, err
			}
			c.Set(tokenContextKey, raw)
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.WithError(err).WithField("path", c.Path()).Debug("token rejected")
			return unauthenticated()
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*Claims)
			raw, _ := c.Get(tokenContextKey).(string)
			if !ok || raw == "" {
				return unauthenticated()
			}

			user, err := store.FindByToken(c.Request().Context(), claims.UserID, raw)
			if err != nil {
				if errors.Is(err, apperrors.ErrUserNotFound) {
					logger.WithField("user_id", claims.UserID).Debug("token not in user's token list")
					return unauthenticated()
				}
				logger.WithError(err).Error("load session user")
				return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
					Error: "failed to authenticate",
					Code:  "INTERNAL_ERROR",
				})
			}

			c.Set(userContextKey, user)
			return next(c)
		})
	}
}

// CurrentUser returns the user resolved by Gate.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

// CurrentToken returns the raw token the request was authenticated with.
func CurrentToken(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: apperrors.ErrUnauthenticated.Error(),
		Code:  "UNAUTHENTICATED",
	})
}
