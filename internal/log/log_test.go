package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var b bytes.Buffer
	logger := slog.New(New(slog.NewJSONHandler(&b, nil)))

	userID := uuid.New()
	r := gin.New()
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger, "/health"))
	r.Use(middleware.ErrorHandler())
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			ctx := model.NewContextWithUser(c.Request.Context(), &model.Profile{ID: userID})
			c.Request = c.Request.WithContext(ctx)
		}
	})

	r.GET("/events/:id", func(c *gin.Context) {
		logger.InfoContext(c.Request.Context(), "loading event")
		c.String(http.StatusOK, "ok")
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/client-error", func(c *gin.Context) {
		_ = c.Error(errdef.NewUnauthorized("token not valid"))
	})
	r.GET("/server-error", func(c *gin.Context) {
		_ = c.Error(errors.New("database exploded"))
	})

	t.Run("AddsCorrelationIDAndUser", func(t *testing.T) {
		w, lines := serve(t, r, &b, "/events/42", "yes")

		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, lines, 2)
		correlationID := w.Header().Get(middleware.CorrelationIDHeader)
		for _, line := range lines {
			assert.Equal(t, correlationID, line["correlationId"])
			assert.Equal(t, userID.String(), line["user"])
		}
	})

	t.Run("LogsRouteQueryAndParameters", func(t *testing.T) {
		_, lines := serve(t, r, &b, "/events/42?past=true", "")

		last := lines[len(lines)-1]
		request, ok := last["request"].(map[string]any)
		require.True(t, ok, "want key request of type map[string]any")
		assert.Equal(t, "/events/42", request["path"])
		assert.Equal(t, "/events/:id", request["route"])
		assert.Equal(t, "past=true", request["query"])
		assert.Equal(t, map[string]any{"id": "42"}, request["params"])
		assert.NotContains(t, last, "user")
	})

	t.Run("SkipsConfiguredPaths", func(t *testing.T) {
		w, lines := serve(t, r, &b, "/health", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, lines)
	})

	levels := map[string]struct {
		status int
		level  string
		err    string
	}{
		"Info":  {status: http.StatusOK, level: "INFO"},
		"Warn":  {status: http.StatusUnauthorized, level: "WARN", err: "token not valid"},
		"Error": {status: http.StatusInternalServerError, level: "ERROR", err: "database exploded"},
	}
	paths := map[string]string{"Info": "/events/1", "Warn": "/client-error", "Error": "/server-error"}
	for name, want := range levels {
		t.Run("Level"+name, func(t *testing.T) {
			w, lines := serve(t, r, &b, paths[name], "")

			require.Equal(t, want.status, w.Code)
			last := lines[len(lines)-1]
			assert.Equal(t, want.level, last["level"])
			if want.err == "" {
				assert.NotContains(t, last, "error")
			} else {
				assert.Contains(t, last["error"], want.err)
			}
		})
	}
}

func serve(t *testing.T, r *gin.Engine, b *bytes.Buffer, path, user string) (*httptest.ResponseRecorder, []map[string]any) {
	t.Helper()
	b.Reset()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var lines []map[string]any
	sc := bufio.NewScanner(b)
	for sc.Scan() {
		line := make(map[string]any)
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line), "line: %s", sc.Text())
		lines = append(lines, line)
	}
	return w, lines
}
