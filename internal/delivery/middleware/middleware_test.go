package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"CareNotifier/internal/delivery/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.LoggingMiddleware(zerolog.New(buf)))
	r.GET("/notify/:userId", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": middleware.RequestID(c)})
	})
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store down"))
		c.Status(http.StatusServiceUnavailable)
	})
	return r
}

func TestRequestIDMiddleware_Generates(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notify/u1", nil)

	newEngine(&buf).ServeHTTP(w, req)

	id := w.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Contains(t, w.Body.String(), id)
}

func TestRequestIDMiddleware_KeepsIncoming(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/notify/u1", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-7")

	newEngine(&buf).ServeHTTP(w, req)

	assert.Equal(t, "req-7", w.Header().Get(middleware.RequestIDHeader))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantLevel string
		wantUser  string
	}{
		{name: "success is info", path: "/notify/u1", wantLevel: "info", wantUser: "u1"},
		{name: "not found is warn", path: "/missing", wantLevel: "warn"},
		{name: "server error is error", path: "/fail", wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(middleware.RequestIDHeader, "req-1")

			newEngine(&buf).ServeHTTP(w, req)

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, tt.path, entry["path"])
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, entry["user_id"])
			} else {
				assert.NotContains(t, entry, "user_id")
			}
		})
	}
}
