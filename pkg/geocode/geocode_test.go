package geocode

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeAddress(t *testing.T) {
	tests := map[string]bool{
		"":                              false,
		"Hangar 3":                      false,
		"TBD":                           false,
		"  virtual  ":                   false,
		"Wittman Regional Airport":      false,
		"525 W 20th Ave, Oshkosh, WI":   true,
		"Van Nuys Airport, Los Angeles": true,
		"Zoom":                          false,
		"1234567890":                    true,
	}
	for location, want := range tests {
		assert.Equal(t, want, LooksLikeAddress(location), location)
	}
}

func TestClient_Geocode(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("q") == "nowhere, at all" {
			_, _ = io.WriteString(w, `[]`)
			return
		}
		assert.Equal(t, "525 W 20th Ave, Oshkosh, WI", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `[{"lat":"43.9844","lon":"-88.5570","display_name":"Wittman Regional Airport"}]`)
	}))
	defer server.Close()
	cache := &memoryCache{entries: map[string][]byte{}}
	client := NewClient(slog.Default(), server.Client(), server.URL+"/", cache)

	result := client.Geocode(context.Background(), " 525 W 20th Ave, Oshkosh, WI ")

	require.NotNil(t, result)
	assert.Equal(t, Result{Lat: 43.9844, Lon: -88.557, DisplayName: "Wittman Regional Airport"}, *result)
	assert.Equal(t, 24*time.Hour, cache.ttl)

	t.Run("Cached", func(t *testing.T) {
		again := client.Geocode(context.Background(), "525 w 20th ave, oshkosh, wi")

		assert.Equal(t, result, again)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Nil(t, client.Geocode(context.Background(), "nowhere, at all"))
		assert.Nil(t, client.Geocode(context.Background(), "nowhere, at all"))
		assert.EqualValues(t, 2, calls.Load(), "want misses cached")
	})

	t.Run("Blank", func(t *testing.T) {
		assert.Nil(t, client.Geocode(context.Background(), "  "))
	})
}

func TestClient_Geocode_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	cache := &memoryCache{entries: map[string][]byte{}}
	client := NewClient(slog.Default(), server.Client(), server.URL, cache)

	assert.Nil(t, client.Geocode(context.Background(), "525 W 20th Ave, Oshkosh, WI"))
	assert.Empty(t, cache.entries, "want failures not cached")
}

type memoryCache struct {
	entries map[string][]byte
	ttl     time.Duration
}

func (m *memoryCache) Get(key string, value any) (bool, error) {
	data, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, value)
}

func (m *memoryCache) Set(key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	m.ttl = ttl
	return nil
}
