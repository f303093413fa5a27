package inttest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupHTTPServer starts an httptest server around the engine returned by server.GetEngine. Routes
// are registered by f. The server is closed when the test ends.
func SetupHTTPServer(t *testing.T, f func(engine *gin.Engine)) *HTTPClient {
	t.Helper()

	require.NoError(t, handler.RegisterValidation(), "failed to register validation")
	gin.SetMode(gin.TestMode)

	engine := server.GetEngine(slog.Default(), "http://localhost:3000")
	f(engine)

	srv := httptest.NewServer(engine.Handler())
	t.Cleanup(func() {
		srv.Client().CloseIdleConnections()
		srv.Close()
	})

	return &HTTPClient{Client: srv.Client(), ServerURL: srv.URL}
}

// HTTPClient sends requests to the test server and fails the test on unexpected responses.
type HTTPClient struct {
	Client    *http.Client
	ServerURL string
}

// RequestOption modifies the headers of an outgoing request.
type RequestOption func(http.Header)

func WithHeader(key string, value string) RequestOption {
	return func(header http.Header) {
		header.Add(key, value)
	}
}

func WithCookie(name string, value string) RequestOption {
	return func(header http.Header) {
		header.Add("Cookie", (&http.Cookie{Name: name, Value: value}).String())
	}
}

func WithAuthToken(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// Get expects 200 and returns the body.
func (hc *HTTPClient) Get(t *testing.T, path string, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodGet, path, nil, http.StatusOK, options...)
}

// Post expects 201 and returns the body.
func (hc *HTTPClient) Post(t *testing.T, path string, body io.Reader, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodPost, path, body, http.StatusCreated, options...)
}

// Delete expects 202 and returns the body.
func (hc *HTTPClient) Delete(t *testing.T, path string, options ...RequestOption) []byte {
	t.Helper()
	return hc.Do(t, http.MethodDelete, path, nil, http.StatusAccepted, options...)
}

// Do sends a request and requires the response status to equal status. The full response body is
// returned.
func (hc *HTTPClient) Do(t *testing.T, method, path string, body io.Reader, status int, options ...RequestOption) []byte {
	t.Helper()
	label := fmt.Sprintf("%s %q", method, path)

	req, err := http.NewRequest(method, hc.ServerURL+path, body)
	require.NoError(t, err, "%s: failed to create request", label)
	for _, option := range options {
		option(req.Header)
	}

	res, err := hc.Client.Do(req)
	require.NoError(t, err, "%s: request failed", label)
	defer func() {
		require.NoError(t, res.Body.Close(), "%s: failed to close response body", label)
	}()

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err, "%s: failed to read response body", label)
	require.Equal(t, status, res.StatusCode, "%s: unexpected status, body: %s", label, data)
	return data
}

// GetJSON expects 200 and decodes the response into out.
func (hc *HTTPClient) GetJSON(t *testing.T, path string, out any, options ...RequestOption) {
	t.Helper()
	hc.doJSON(t, http.MethodGet, path, nil, http.StatusOK, out, options...)
}

// PostJSON expects 201 and decodes the response into out.
func (hc *HTTPClient) PostJSON(t *testing.T, path string, body io.Reader, out any, options ...RequestOption) {
	t.Helper()
	hc.doJSON(t, http.MethodPost, path, body, http.StatusCreated, out, options...)
}

// PutJSON expects 200 and decodes the response into out.
func (hc *HTTPClient) PutJSON(t *testing.T, path string, body io.Reader, out any, options ...RequestOption) {
	t.Helper()
	hc.doJSON(t, http.MethodPut, path, body, http.StatusOK, out, options...)
}

func (hc *HTTPClient) doJSON(t *testing.T, method, path string, body io.Reader, status int, out any, options ...RequestOption) {
	t.Helper()

	if body != nil {
		options = append(options, WithHeader("Content-Type", "application/json"))
	}
	data := hc.Do(t, method, path, body, status, options...)
	require.NoError(t, json.Unmarshal(data, out), "%s %q: failed to decode response body", method, path)
}
