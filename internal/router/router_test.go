package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"twitterapi/internal/auth"
	"twitterapi/internal/config"
	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/handler"
	"twitterapi/internal/model"
	"twitterapi/internal/notify"
	"twitterapi/internal/repository"
	"twitterapi/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		CacheTTL:       time.Minute,
		TokenTTL:       time.Hour,
		BcryptCost:     bcrypt.MinCost,
		LoginRateLimit: 100,
		LoginRateBurst: 100,
		MaxUploadSize:  "10M",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryStore()
	broker := notify.NewMemoryBroker(logger)
	jwtService := auth.NewJWTService("test-secret", cfg.TokenTTL)

	authService := service.NewAuthService(store.Users, jwtService, logger)
	userService := service.NewUserService(store.Users, nil, cfg.CacheTTL, cfg.BcryptCost, logger)
	tweetService := service.NewTweetService(store.Tweets, logger)
	notificationService := service.NewNotificationService(store.Notifications, store.Users, broker, logger)

	e := echo.New()
	Register(e, cfg, logger, jwtService, store.Users, Handlers{
		Users:         handler.NewUserHandler(userService, logger),
		Auth:          handler.NewAuthHandler(authService, logger),
		Tweets:        handler.NewTweetHandler(tweetService, logger),
		Notifications: handler.NewNotificationHandler(notificationService, logger),
	})
	return e
}

func do(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	decode(t, rec, &body)
	return body.Code
}

// signUp registers a user and logs in, returning the user and a session token.
func signUp(t *testing.T, e *echo.Echo, username, email, password string) (model.User, string) {
	t.Helper()

	rec := do(e, http.MethodPost, "/users", "", map[string]string{
		"name":     "Test " + username,
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(e, http.MethodPost, "/users/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login handler.LoginResponse
	decode(t, rec, &login)
	require.NotEmpty(t, login.Token)
	return *login.User, login.Token
}

func TestScenario_TweetLikeUnlike(t *testing.T) {
	e := newTestServer(t, testConfig())
	a, token := signUp(t, e, "a", "a@x.com", "secretpw1")

	rec := do(e, http.MethodPost, "/tweets", token, map[string]string{"text": "first tweet"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tweet model.Tweet
	decode(t, rec, &tweet)
	assert.Equal(t, a.ID, tweet.User)

	path := "/tweets/" + tweet.ID
	rec = do(e, http.MethodPut, path+"/like", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, path+"/like", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_LIKED", errorCode(t, rec))

	rec = do(e, http.MethodPut, path+"/unlike", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, path+"/unlike", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_LIKED", errorCode(t, rec))

	rec = do(e, http.MethodPut, "/tweets/missing/like", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/tweets/"+a.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []model.Tweet
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "first tweet", mine[0].Text)
}

func TestAuthGate(t *testing.T) {
	e := newTestServer(t, testConfig())
	_, token := signUp(t, e, "a", "a@x.com", "secretpw1")

	rec := do(e, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(t, rec))

	rec = do(e, http.MethodGet, "/users/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := auth.NewJWTService("other-secret", time.Hour).GenerateToken("whoever")
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/users/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), token)
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	e := newTestServer(t, testConfig())
	_, first := signUp(t, e, "a", "a@x.com", "secretpw1")

	rec := do(e, http.MethodPost, "/users/login", "", map[string]string{"email": "a@x.com", "password": "secretpw1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login handler.LoginResponse
	decode(t, rec, &login)
	second := login.Token

	rec = do(e, http.MethodPost, "/users/logout", first, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/users/me", first, nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/users/me", second, nil).Code)

	rec = do(e, http.MethodPost, "/users/logoutAll", second, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/users/me", second, nil).Code)
}

func TestLogin_Failures(t *testing.T) {
	e := newTestServer(t, testConfig())
	signUp(t, e, "a", "a@x.com", "secretpw1")

	rec := do(e, http.MethodPost, "/users/login", "", map[string]string{"email": "a@x.com", "password": "wrongpw11"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))

	rec = do(e, http.MethodPost, "/users/login", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.LoginRateLimit = 0.001
	cfg.LoginRateBurst = 1
	e := newTestServer(t, cfg)

	body := map[string]string{"email": "a@x.com", "password": "secretpw1"}
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/users/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(e, http.MethodPost, "/users/login", "", body).Code)
}

func TestRegister_Validation(t *testing.T) {
	e := newTestServer(t, testConfig())

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{
			name:   "password containing the forbidden word",
			body:   map[string]string{"name": "A", "username": "a", "email": "a@x.com", "password": "mypassword1"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "short password",
			body:   map[string]string{"name": "A", "username": "a", "email": "a@x.com", "password": "abc"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "password longer than bcrypt accepts",
			body:   map[string]string{"name": "A", "username": "a", "email": "a@x.com", "password": strings.Repeat("x", 73)},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "bad email",
			body:   map[string]string{"name": "A", "username": "a", "email": "a-at-x", "password": "secretpw1"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "missing username",
			body:   map[string]string{"name": "A", "email": "a@x.com", "password": "secretpw1"},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/users", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}

	signUp(t, e, "a", "a@x.com", "secretpw1")
	rec := do(e, http.MethodPost, "/users", "", map[string]string{"name": "B", "username": "b", "email": "A@X.com", "password": "secretpw1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", errorCode(t, rec))
}

func TestUsers_GetAndList(t *testing.T) {
	e := newTestServer(t, testConfig())
	a, _ := signUp(t, e, "a", "a@x.com", "secretpw1")

	rec := do(e, http.MethodGet, "/users/"+a.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.User
	decode(t, rec, &got)
	assert.Equal(t, "a", got.Username)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/users/nobody", "", nil).Code)

	rec = do(e, http.MethodGet, "/users", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []model.User
	decode(t, rec, &users)
	assert.Len(t, users, 1)
}

func TestUpdateMe(t *testing.T) {
	e := newTestServer(t, testConfig())
	_, token := signUp(t, e, "a", "a@x.com", "secretpw1")

	rec := do(e, http.MethodPatch, "/users/me", token, map[string]string{"isAdmin": "true"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_UPDATE", errorCode(t, rec))

	rec = do(e, http.MethodPatch, "/users/me", token, map[string]string{"password": strings.Repeat("x", 73)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = do(e, http.MethodPatch, "/users/me", token, map[string]string{"bio": "hello there", "password": "newsecret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.User
	decode(t, rec, &updated)
	assert.Equal(t, "hello there", updated.Bio)

	rec = do(e, http.MethodPost, "/users/login", "", map[string]string{"email": "a@x.com", "password": "newsecret1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	e := newTestServer(t, testConfig())
	a, tokenA := signUp(t, e, "a", "a@x.com", "secretpw1")
	b, _ := signUp(t, e, "b", "b@x.com", "secretpw1")

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodDelete, "/users/"+b.ID, tokenA, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/users/nobody", tokenA, nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/users/"+a.ID, tokenA, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/users/me", tokenA, nil).Code)
}

func TestFollowFlow(t *testing.T) {
	e := newTestServer(t, testConfig())
	a, tokenA := signUp(t, e, "a", "a@x.com", "secretpw1")
	b, _ := signUp(t, e, "b", "b@x.com", "secretpw1")

	assert.Equal(t, http.StatusOK, do(e, http.MethodPut, "/users/"+b.ID+"/follow", tokenA, nil).Code)

	rec := do(e, http.MethodPut, "/users/"+b.ID+"/follow", tokenA, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_FOLLOWING", errorCode(t, rec))

	rec = do(e, http.MethodPut, "/users/"+a.ID+"/follow", tokenA, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "SELF_FOLLOW", errorCode(t, rec))

	var target model.User
	decode(t, do(e, http.MethodGet, "/users/"+b.ID, "", nil), &target)
	assert.Equal(t, []string{a.ID}, target.Followers)
	var me model.User
	decode(t, do(e, http.MethodGet, "/users/me", tokenA, nil), &me)
	assert.Equal(t, []string{b.ID}, me.Followings)

	assert.Equal(t, http.StatusOK, do(e, http.MethodPut, "/users/"+b.ID+"/unfollow", tokenA, nil).Code)
	rec = do(e, http.MethodPut, "/users/"+b.ID+"/unfollow", tokenA, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_FOLLOWING", errorCode(t, rec))

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/users/nobody/follow", tokenA, nil).Code)
}

func pngUpload(t *testing.T, method, path, field, token string) *http.Request {
	t.Helper()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "pic.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestAvatarUpload(t *testing.T) {
	e := newTestServer(t, testConfig())
	a, token := signUp(t, e, "a", "a@x.com", "secretpw1")

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/users/"+a.ID+"/avatar", "", nil).Code)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, pngUpload(t, http.MethodPost, "/users/me/avatar", "avatar", token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/users/"+a.ID+"/avatar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	cfg, err := png.DecodeConfig(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Width)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, pngUpload(t, http.MethodPost, "/users/me/avatar", "wrongfield", token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTweetImageUpload(t *testing.T) {
	e := newTestServer(t, testConfig())
	_, tokenA := signUp(t, e, "a", "a@x.com", "secretpw1")
	_, tokenB := signUp(t, e, "b", "b@x.com", "secretpw1")

	rec := do(e, http.MethodPost, "/tweets", tokenA, map[string]string{"text": "with a picture"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var tweet model.Tweet
	decode(t, rec, &tweet)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, pngUpload(t, http.MethodPost, "/uploadTweetImage/"+tweet.ID, "upload", tokenB))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, pngUpload(t, http.MethodPost, "/uploadTweetImage/"+tweet.ID, "upload", tokenA))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/tweets/"+tweet.ID+"/image", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))

	rec = do(e, http.MethodGet, "/tweets", "", nil)
	var all []model.Tweet
	decode(t, rec, &all)
	require.Len(t, all, 1)
	assert.True(t, all[0].ImageExists)
}

func TestUploadBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadSize = "1K"
	e := newTestServer(t, cfg)
	_, token := signUp(t, e, "a", "a@x.com", "secretpw1")

	req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNotifications(t *testing.T) {
	e := newTestServer(t, testConfig())
	a, tokenA := signUp(t, e, "a", "a@x.com", "secretpw1")
	b, tokenB := signUp(t, e, "b", "b@x.com", "secretpw1")

	rec := do(e, http.MethodPost, "/notification", tokenA, map[string]string{
		"notReceiverId":    b.ID,
		"notificationType": "like",
		"postText":         "hello",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n model.Notification
	decode(t, rec, &n)
	assert.Equal(t, a.ID, n.NotSenderID)
	assert.Equal(t, "a", n.Username)

	rec = do(e, http.MethodPost, "/notification", tokenA, map[string]string{"notReceiverId": "nobody", "notificationType": "like"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var received []model.Notification
	decode(t, do(e, http.MethodGet, "/notification/"+b.ID, "", nil), &received)
	assert.Len(t, received, 1)

	var sent []model.Notification
	decode(t, do(e, http.MethodGet, "/notification/sent", tokenA, nil), &sent)
	assert.Len(t, sent, 1)
	decode(t, do(e, http.MethodGet, "/notification/sent", tokenB, nil), &sent)
	assert.Empty(t, sent)

	var all []model.Notification
	decode(t, do(e, http.MethodGet, "/notification", "", nil), &all)
	assert.Len(t, all, 1)
}

func TestNotificationStream(t *testing.T) {
	e := newTestServer(t, testConfig())
	_, tokenA := signUp(t, e, "a", "a@x.com", "secretpw1")
	b, tokenB := signUp(t, e, "b", "b@x.com", "secretpw1")

	srv := httptest.NewServer(e)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/notification/stream"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+tokenB, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered before the upgrade completes.
	rec := do(e, http.MethodPost, "/notification", tokenA, map[string]string{
		"notReceiverId":    b.ID,
		"notificationType": "follow",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var n model.Notification
	require.NoError(t, json.Unmarshal(payload, &n))
	assert.Equal(t, b.ID, n.NotReceiverID)
	assert.Equal(t, "follow", n.NotificationType)
}
