// Package geocode resolves event locations to coordinates through OpenStreetMap Nominatim.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL of the Nominatim API
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// UserAgent identifies the application as required by the Nominatim usage policy
const UserAgent = "PAPAVolunteerApp/1.0 (https://www.asianpilots.org)"

const cacheTTL = 24 * time.Hour

var placeholder = regexp.MustCompile(`(?i)^(TBD|Virtual|Online|Zoom|TBA)$`)

// LooksLikeAddress reports whether location is worth sending to Nominatim. Placeholders and short
// venue names are skipped, an address needs a digit or a comma.
func LooksLikeAddress(location string) bool {
	l := strings.TrimSpace(location)
	if len(l) < 10 || placeholder.MatchString(l) {
		return false
	}
	return strings.ContainsAny(l, "0123456789,")
}

type Result struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
}

type cache interface {
	Get(key string, value any) (bool, error)
	Set(key string, value any, ttl time.Duration) error
}

func NewClient(logger *slog.Logger, httpClient *http.Client, baseURL string, cache cache) *Client {
	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		cache:      cache,
	}
}

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	cache      cache
}

// entry is cached for misses as well so unknown addresses are not looked up again
type entry struct {
	Result *Result `json:"result"`
}

// Geocode returns the coordinates of address or nil if Nominatim has no match or cannot be
// reached.
func (c *Client) Geocode(ctx context.Context, address string) *Result {
	q := strings.TrimSpace(address)
	if q == "" {
		return nil
	}
	key := strings.ToLower(q)

	var cached entry
	ok, err := c.cache.Get(key, &cached)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to read cached geocode", "address", q, "error", err)
	}
	if ok {
		return cached.Result
	}

	result, err := c.search(ctx, q)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to geocode", "address", q, "error", err)
		return nil
	}

	if err := c.cache.Set(key, entry{Result: result}, cacheTTL); err != nil {
		c.logger.WarnContext(ctx, "Failed to cache geocode", "address", q, "error", err)
	}
	return result
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *Client) search(ctx context.Context, q string) (*Result, error) {
	query := url.Values{
		"q":      {q},
		"format": {"json"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to close geocode response body", "error", err)
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim responded with %d", res.StatusCode)
	}

	var places []place
	if err := json.NewDecoder(res.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode places: %v", err)
	}
	if len(places) == 0 || places[0].Lat == "" || places[0].Lon == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %v", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %v", places[0].Lon, err)
	}

	displayName := places[0].DisplayName
	if displayName == "" {
		displayName = q
	}
	return &Result{Lat: lat, Lon: lon, DisplayName: displayName}, nil
}
