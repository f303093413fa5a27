package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/errdef"
	"github.com/asianpilots/volunteer-manager/pkg/model"
)

// DefaultBaseURL of the Ship24 public API
const DefaultBaseURL = "https://api.ship24.com/public/v1"

const (
	trackersTrackPath  = "/trackers/track"
	trackingSearchPath = "/tracking/search"
)

// courierCodes maps carriers to Ship24's courier codes
var courierCodes = map[model.Carrier]string{
	model.CarrierUSPS:  "us-post",
	model.CarrierUPS:   "ups",
	model.CarrierFedEx: "fedex",
	model.CarrierDHL:   "dhl",
}

func NewClient(logger *slog.Logger, httpClient *http.Client, baseURL string, apiKey string) *Client {
	return &Client{
		logger:     logger,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
	}
}

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Result of a tracking lookup
type Result struct {
	Computed
	Raw []byte
}

type trackRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	CourierCode    string `json:"courierCode"`
}

// Track looks up a tracking number. It creates a Ship24 tracker and falls back to the per-call search
// endpoint if the plan does not support trackers. A freshly created tracker often has no events yet,
// in which case the tracker results and then the search endpoint are asked for them.
func (c *Client) Track(ctx context.Context, trackingNumber string, carrier model.Carrier) (*Result, error) {
	if c.apiKey == "" {
		return nil, errdef.NewServiceUnavailable("SHIP24_API_KEY is not set.")
	}

	normalized := NormalizeTrackingNumber(trackingNumber)
	if normalized == "" {
		return nil, errdef.NewBadRequest("Tracking number is required.")
	}

	courierCode, ok := courierCodes[carrier]
	if !ok {
		courierCode = courierCodes[model.CarrierUSPS]
	}
	body := trackRequest{TrackingNumber: normalized, CourierCode: courierCode}

	status, payload, err := c.do(ctx, http.MethodPost, trackersTrackPath, body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		c.logger.DebugContext(ctx, "Ship24 trackers not available, using per-call search", "trackingNumber", normalized)
		status, payload, err = c.do(ctx, http.MethodPost, trackingSearchPath, body)
		if err != nil {
			return nil, err
		}
	}

	if status == http.StatusCreated {
		payload = c.withEvents(ctx, payload, body)
	}

	if status < 200 || status > 299 {
		return nil, errdef.NewUpstream("%s", errorMessage(status, payload))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	shipment, events := ExtractShipmentAndEvents(payload)
	return &Result{
		Computed: ComputeStatus(shipment, events),
		Raw:      raw,
	}, nil
}

// withEvents returns a payload carrying events for a tracker that was just created without any. The
// created payload is returned as is if neither the tracker results nor the search have events.
func (c *Client) withEvents(ctx context.Context, created map[string]any, body trackRequest) map[string]any {
	first := firstItem(asMap(created["data"]), "trackings", "trackers")
	if len(asSlice(first["events"])) > 0 {
		return created
	}

	if id := trackerID(first["tracker"]); id != "" {
		_, results, err := c.do(ctx, http.MethodGet, "/trackers/"+url.PathEscape(id)+"/results", nil)
		if err != nil {
			c.logger.WarnContext(ctx, "Failed to get Ship24 tracker results", "trackerId", id, "error", err)
		} else {
			data := asMap(results["data"])
			if len(asSlice(firstItem(data, "trackings", "trackers")["events"])) > 0 {
				return results
			}
			if len(asSlice(data["events"])) > 0 {
				return synthesized(data)
			}
		}
	}

	_, search, err := c.do(ctx, http.MethodPost, trackingSearchPath, body)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to search Ship24", "error", err)
		return created
	}
	data := asMap(search["data"])
	item := firstItem(data, "trackings", "trackers")
	if item == nil {
		item = asMap(data["tracking"])
	}
	if item == nil {
		item = asMap(data["tracker"])
	}
	if len(asSlice(item["events"])) > 0 {
		return search
	}
	if len(asSlice(data["events"])) > 0 {
		return synthesized(data)
	}
	return created
}

func synthesized(data map[string]any) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"trackings": []any{
				map[string]any{"shipment": data["shipment"], "events": data["events"]},
			},
		},
	}
}

func trackerID(tracker any) string {
	if id, ok := tracker.(string); ok {
		return id
	}
	t := asMap(tracker)
	for _, key := range []string{"trackerId", "tracker_id", "id"} {
		if id := asString(t[key]); id != "" {
			return id
		}
	}
	return ""
}

// errorMessage picks the most specific message Ship24 sent along with a failed request
func errorMessage(status int, payload map[string]any) string {
	if errs := asSlice(payload["errors"]); len(errs) > 0 {
		if message := asString(asMap(errs[0])["message"]); message != "" {
			return message
		}
	}
	if message := asString(payload["message"]); message != "" {
		return message
	}
	if message := asString(payload["error"]); message != "" {
		return message
	}

	switch status {
	case http.StatusUnauthorized:
		return "Invalid API key."
	case http.StatusForbidden:
		return "Access denied. Check your Ship24 plan or API key."
	case http.StatusTooManyRequests:
		return "Too many requests. Try again later."
	default:
		return fmt.Sprintf("Tracking unavailable (%d).", status)
	}
}

// do sends a request to Ship24 and decodes the JSON response. A body which isn't a JSON object is
// returned as an empty payload so the status alone decides the outcome.
func (c *Client) do(ctx context.Context, method, path string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, errdef.NewUpstream("Failed to contact Ship24: %v", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "Failed to close Ship24 response body", "error", err)
		}
	}(res.Body)

	payload := map[string]any{}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil || payload == nil {
		payload = map[string]any{}
	}

	c.logger.DebugContext(ctx, "Ship24 request", "method", method, "path", path, "status", res.StatusCode, "latency", time.Since(start))
	return res.StatusCode, payload, nil
}
