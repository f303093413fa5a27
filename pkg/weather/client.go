package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL of the Open-Meteo API
const DefaultBaseURL = "https://api.open-meteo.com/v1"

const (
	cacheTTL = 15 * time.Minute
	timezone = "America/New_York"
	daily    = "temperature_2m_max,temperature_2m_min,weathercode,precipitation_probability_max,apparent_temperature_max"
)

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
	group      singleflight.Group
}

// Forecast returns the daily forecast for the location between start and end. Any failure yields
// an empty forecast. Forecasts are cached and concurrent requests for the same forecast share a
// single upstream call.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, start, end string) []Day {
	start, end = truncateDate(start), truncateDate(end)
	key := fmt.Sprintf("%g:%g:%s:%s", lat, lon, start, end)

	if days, ok := c.cached(ctx, key); ok {
		return days
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if days, ok := c.cached(ctx, key); ok {
			return days, nil
		}

		days, err := c.fetch(ctx, lat, lon, start, end)
		if err != nil {
			return nil, err
		}

		if err := c.cache.Set(key, days, cacheTTL); err != nil {
			c.logger.WarnContext(ctx, "Failed to cache forecast", "key", key, "error", err)
		}
		return days, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to fetch forecast", "key", key, "error", err)
		return []Day{}
	}
	return v.([]Day)
}

func (c *Client) cached(ctx context.Context, key string) ([]Day, bool) {
	var days []Day
	ok, err := c.cache.Get(key, &days)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to read cached forecast", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	if days == nil {
		days = []Day{}
	}
	return days, true
}

type forecastResponse struct {
	Daily struct {
		Time                        []string   `json:"time"`
		Temperature2mMax            []*float64 `json:"temperature_2m_max"`
		Temperature2mMin            []*float64 `json:"temperature_2m_min"`
		WeatherCode                 []*float64 `json:"weathercode"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
		ApparentTemperatureMax      []*float64 `json:"apparent_temperature_max"`
	} `json:"daily"`
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, start, end string) ([]Day, error) {
	query := url.Values{
		"latitude":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(lon, 'f', -1, 64)},
		"daily":      {daily},
		"timezone":   {timezone},
		"start_date": {start},
		"end_date":   {end},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to close forecast response body", "error", err)
		}
	}(res.Body)

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo responded with %d", res.StatusCode)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(res.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %v", err)
	}

	return toDays(forecast), nil
}

func toDays(forecast forecastResponse) []Day {
	d := forecast.Daily
	days := make([]Day, 0, len(d.Time))
	for i, t := range d.Time {
		date := truncateDate(t)
		code := int(valueAt(d.WeatherCode, i))
		day := Day{
			Date:         date,
			HighF:        fahrenheit(valueAt(d.Temperature2mMax, i)),
			LowF:         fahrenheit(valueAt(d.Temperature2mMin, i)),
			WeatherCode:  code,
			WeatherLabel: Label(code),
			WeatherIcon:  Icon(code),
		}
		if parsed, err := time.Parse(time.DateOnly, date); err == nil {
			day.DayName = parsed.Format("Mon")
		}
		if p := pointerAt(d.PrecipitationProbabilityMax, i); p != nil {
			precip := int(math.Round(*p))
			day.PrecipProbMax = &precip
		}
		if f := pointerAt(d.ApparentTemperatureMax, i); f != nil {
			feels := fahrenheit(*f)
			day.FeelsLikeF = &feels
		}
		days = append(days, day)
	}
	return days
}

func pointerAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// valueAt returns the value at i or 0 if it is missing or null
func valueAt(values []*float64, i int) float64 {
	if v := pointerAt(values, i); v != nil {
		return *v
	}
	return 0
}
