package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/model"
)

// MockTokenStore is a mock implementation of TokenStore.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) AddToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenStore) FindByToken(ctx context.Context, userID, token string) (*model.User, error) {
	args := m.Called(ctx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockTokenStore) RemoveToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenStore) RemoveAllTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func serveGated(t *testing.T, store TokenStore, jwtService *JWTService, lookup, target, header string) (*httptest.ResponseRecorder, *model.User) {
	t.Helper()

	e := echo.New()
	var seen *model.User
	e.GET("/private", func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.String(http.StatusOK, CurrentToken(c))
	}, Gate(jwtService, store, lookup, discardLogger()))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestGate(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Hour)
	token, err := jwtService.GenerateToken("user-1")
	require.NoError(t, err)
	foreign, err := NewJWTService("other-secret", time.Hour).GenerateToken("user-1")
	require.NoError(t, err)

	user := &model.User{ID: "user-1", Username: "alice", Tokens: []model.SessionToken{{Token: token}}}

	tests := []struct {
		name       string
		header     string
		setupMock  func(*MockTokenStore)
		wantStatus int
		wantUser   bool
	}{
		{
			name:   "valid token present in list",
			header: "Bearer " + token,
			setupMock: func(m *MockTokenStore) {
				m.On("FindByToken", mock.Anything, "user-1", token).Return(user, nil)
			},
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:   "revoked token with valid signature",
			header: "Bearer " + token,
			setupMock: func(m *MockTokenStore) {
				m.On("FindByToken", mock.Anything, "user-1", token).Return(nil, apperrors.ErrUserNotFound)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad signature",
			header:     "Bearer " + foreign,
			setupMock:  func(m *MockTokenStore) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing header",
			setupMock:  func(m *MockTokenStore) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			header:     "Basic dXNlcjpwYXNz",
			setupMock:  func(m *MockTokenStore) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockTokenStore)
			tt.setupMock(store)

			rec, seen := serveGated(t, store, jwtService, HeaderTokenLookup, "/private", tt.header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantUser {
				require.NotNil(t, seen)
				assert.Equal(t, "user-1", seen.ID)
				assert.Equal(t, token, rec.Body.String())
			} else {
				assert.Nil(t, seen)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestGate_QueryLookup(t *testing.T) {
	jwtService := NewJWTService("test-secret", time.Hour)
	token, err := jwtService.GenerateToken("user-1")
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("FindByToken", mock.Anything, "user-1", token).Return(&model.User{ID: "user-1"}, nil)

	rec, seen := serveGated(t, store, jwtService, HeaderOrQueryTokenLookup, "/private?token="+token, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)

	rec, _ = serveGated(t, new(MockTokenStore), jwtService, HeaderTokenLookup, "/private?token="+token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
