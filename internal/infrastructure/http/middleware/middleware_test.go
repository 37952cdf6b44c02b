package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/storefront-payments/internal/infrastructure/http/middleware"
)

func newEngine(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	l := slog.New(slog.NewJSONHandler(buf, nil))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(l), middleware.Logger(l))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, middleware.GetRequestID(c)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestRequestID_ShouldKeepInboundHeader(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(middleware.HeaderRequestID, "rid-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "rid-123", w.Header().Get(middleware.HeaderRequestID))
	require.Equal(t, "rid-123", w.Body.String())
}

func TestRequestID_ShouldGenerateWhenMissing(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestLogger_ShouldNotLogQueryString(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?token=secret", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http_request", entry["msg"])
	require.Equal(t, "/ok", entry["path"])
	require.NotContains(t, buf.String(), "secret")
}

func TestRecovery_ShouldReturnJSON500(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), `"success":false`)
	require.Contains(t, buf.String(), "panic_recovered")
}
