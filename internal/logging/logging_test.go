package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithOutput(&buf, "debug", "json")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	WithService(logger, "test").Info("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, serviceName, line["service"])
	assert.Equal(t, "test", line["env"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := newWithOutput(&bytes.Buffer{}, "chatty", "text")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	_, ok := logger.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithOutput(&buf, "info", "json")

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/missing", func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "/missing", line["path"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
}

func TestRequestLogger_OmitsQueryToken(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithOutput(&buf, "info", "text")

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/notification/stream", func(c echo.Context) error {
		return c.NoContent(http.StatusUnauthorized)
	})

	req := httptest.NewRequest(http.MethodGet, "/notification/stream?token=SECRET.JWT.VALUE", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "/notification/stream")
	assert.NotContains(t, out, "SECRET.JWT.VALUE")
	assert.NotContains(t, out, "token=")
}
