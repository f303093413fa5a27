package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Message string `json:"message" form:"message" binding:"required"`
}

func TestDataBinder(t *testing.T) {
	bind := func(contentType, body string) (chatRequest, error) {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		req, err := http.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", contentType)
		ctx.Request = req

		var request chatRequest
		err = DataBinder(ctx, &request, "message is required")
		return request, err
	}

	t.Run("JSON", func(t *testing.T) {
		got, err := bind("application/json", `{"message":"what do I wear?"}`)

		require.NoError(t, err)
		assert.Equal(t, "what do I wear?", got.Message)
	})

	t.Run("Form", func(t *testing.T) {
		got, err := bind("application/x-www-form-urlencoded", "message=hello")

		require.NoError(t, err)
		assert.Equal(t, "hello", got.Message)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := bind("application/json", `{}`)

		assert.True(t, errdef.IsBadRequest(err))
		assert.EqualError(t, err, "message is required")
	})

	t.Run("UnsupportedMediaType", func(t *testing.T) {
		_, err := bind("text/plain", "hello")

		assert.True(t, errdef.IsUnsupportedMediaType(err))
	})
}

func TestHasBody(t *testing.T) {
	request := func(body io.Reader, contentLength int64) *gin.Context {
		ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
		ctx.Request = httptest.NewRequest(http.MethodPost, "/events/1/signup", body)
		ctx.Request.ContentLength = contentLength
		return ctx
	}

	t.Run("NoBody", func(t *testing.T) {
		ctx := request(http.NoBody, 0)

		assert.False(t, HasBody(ctx))
	})

	t.Run("KnownLength", func(t *testing.T) {
		ctx := request(strings.NewReader(`{}`), 2)

		assert.True(t, HasBody(ctx))
	})

	t.Run("ChunkedEmpty", func(t *testing.T) {
		ctx := request(io.NopCloser(strings.NewReader("")), -1)

		assert.False(t, HasBody(ctx))
	})

	t.Run("ChunkedKeepsContent", func(t *testing.T) {
		ctx := request(io.NopCloser(strings.NewReader(`{"phone":"555-0100"}`)), -1)

		require.True(t, HasBody(ctx))
		data, err := io.ReadAll(ctx.Request.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"phone":"555-0100"}`, string(data))
	})
}
