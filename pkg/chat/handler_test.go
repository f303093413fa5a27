package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/asianpilots/volunteer-manager/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_Ask(t *testing.T) {
	user := &model.Profile{ID: uuid.New()}
	service := &mockChatService{}
	service.On("Ask", user.ID, "Where do I park?").Return("Lot B.", nil)

	w := serve(t, service, user, http.MethodPost, "/chat", `{"message":"Where do I park?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reply":"Lot B."}`, w.Body.String())
}

func TestHandler_Ask_Errors(t *testing.T) {
	tests := map[string]struct {
		err    error
		status int
		body   string
	}{
		"EmptyMessage": {
			err:    errdef.NewBadRequest("message is required"),
			status: http.StatusBadRequest,
			body:   `{"error":"message is required"}`,
		},
		"NotConfigured": {
			err:    ErrNotConfigured,
			status: http.StatusInternalServerError,
			body:   `{"error":"Chat is not configured."}`,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			user := &model.Profile{ID: uuid.New()}
			service := &mockChatService{}
			service.On("Ask", user.ID, mock.Anything).Return("", test.err)

			w := serve(t, service, user, http.MethodPost, "/chat", `{"message":""}`)

			assert.Equal(t, test.status, w.Code)
			assert.JSONEq(t, test.body, w.Body.String())
		})
	}
}

func TestHandler_Ask_Unauthenticated(t *testing.T) {
	service := &mockChatService{}

	w := serve(t, service, nil, http.MethodPost, "/chat", `{"message":"hi"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	service.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestHandler_Export(t *testing.T) {
	user := &model.Profile{ID: uuid.New(), IsAdmin: true}
	service := &mockChatService{}
	service.
		On("ExportLogs").
		Return([]model.ChatLog{{CreatedAt: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC), Role: model.ChatRoleUser, Content: "hi"}}, nil)

	w := serve(t, service, user, http.MethodGet, "/admin/chat-log/export", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename="chat-log-\d{4}-\d{2}-\d{2}\.csv"$`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "created_at,user_id,session_id,role,content\n2026-10-14T09:30:00Z,,,user,hi\n", w.Body.String())
}

func serve(t *testing.T, service chatService, user *model.Profile, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	authenticator := func(c *gin.Context) {
		if user == nil {
			_ = c.Error(errdef.NewUnauthorized("Sign in to use the FAQ chat."))
			c.Abort()
			return
		}
		c.Set("user", user)
	}
	administrator := func(c *gin.Context) {}
	Routes(r, authenticator, administrator, NewHandler(service))

	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockChatService struct{ mock.Mock }

func (m *mockChatService) Ask(_ context.Context, userID uuid.UUID, message string) (string, error) {
	called := m.Called(userID, message)
	return called.String(0), called.Error(1)
}

func (m *mockChatService) Logs(context.Context) ([]model.ChatLog, error) {
	called := m.Called()
	return called.Get(0).([]model.ChatLog), called.Error(1)
}

func (m *mockChatService) ExportLogs(context.Context) ([]model.ChatLog, error) {
	called := m.Called()
	return called.Get(0).([]model.ChatLog), called.Error(1)
}
