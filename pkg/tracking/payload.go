package tracking

import (
	"encoding/json"
	"slices"
	"strings"
)

// NormalizeTrackingNumber trims the tracking number and drops all whitespace within it.
func NormalizeTrackingNumber(value string) string {
	return strings.Join(strings.Fields(value), "")
}

// ExtractShipmentAndEvents finds the shipment and its events in any of the payload shapes Ship24
// returns. It looks at data.tracking, then the first of data.trackings, data.trackers or the root
// trackings and finally data.shipment and data.events.
func ExtractShipmentAndEvents(payload map[string]any) (map[string]any, []Event) {
	data := asMap(payload["data"])

	if single := asMap(data["tracking"]); single != nil {
		return shipmentAndEventsOf(single, data)
	}

	list := asSlice(firstPresent(data, "trackings", "trackers"))
	if list == nil {
		list = asSlice(payload["trackings"])
	}
	if len(list) > 0 {
		if first := asMap(list[0]); first != nil {
			return shipmentAndEventsOf(first, data)
		}
	}

	return asMap(data["shipment"]), asEvents(data["events"])
}

func shipmentAndEventsOf(item map[string]any, data map[string]any) (map[string]any, []Event) {
	shipment := asMap(item["shipment"])
	if shipment == nil {
		shipment = asMap(data["shipment"])
	}
	events := itemEvents(item)
	if len(events) == 0 {
		events = asEvents(data["events"])
	}
	return shipment, events
}

// itemEvents returns the events of a tracking item which may live on the item itself, on its
// shipment or on a nested tracking/result object.
func itemEvents(item map[string]any) []Event {
	for _, key := range []string{"events", "trackingActivities", "activities"} {
		if events := asEvents(item[key]); len(events) > 0 {
			return events
		}
	}
	if events := asEvents(asMap(item["shipment"])["events"]); len(events) > 0 {
		return events
	}
	for _, key := range []string{"tracking", "result", "results", "data"} {
		if events := asEvents(asMap(item[key])["events"]); len(events) > 0 {
			return events
		}
	}
	return nil
}

// WebhookTracking is one item of a pushed webhook delivery.
type WebhookTracking struct {
	Tracker  map[string]any
	Shipment map[string]any
	Events   []Event
}

// TrackingNumber returns the trimmed tracker.trackingNumber or "" if the item has none.
func (t WebhookTracking) TrackingNumber() string {
	return strings.TrimSpace(asString(t.Tracker["trackingNumber"]))
}

// WebhookTrackings returns the items of a decoded webhook payload. Items that are not objects are
// dropped. Fields with an unexpected shape come back empty and events that are not objects are
// left out.
func WebhookTrackings(payload any) []WebhookTracking {
	items := asSlice(asMap(payload)["trackings"])
	trackings := make([]WebhookTracking, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		trackings = append(trackings, WebhookTracking{
			Tracker:  asMap(m["tracker"]),
			Shipment: asMap(m["shipment"]),
			Events:   asEvents(m["events"]),
		})
	}
	return trackings
}

// StoredEvents reads the events back out of a persisted raw payload.
func StoredEvents(raw []byte) []Event {
	r := decode(raw)
	if r == nil {
		return nil
	}

	d := r
	if data := asMap(r["data"]); data != nil {
		d = data
	}

	list := asSlice(firstPresent(d, "trackings", "trackers"))
	if list == nil {
		list = asSlice(r["trackings"])
	}
	if len(list) > 0 {
		if first := asMap(list[0]); first != nil {
			if _, ok := first["events"].([]any); ok {
				return asEvents(first["events"])
			}
		}
	}

	return asEvents(d["events"])
}

// MergeEvents adds the incoming events to the existing ones. Events with an eventId already present
// are skipped, events without an id are always added. The result is sorted by occurrence time with
// events lacking a usable time last. Merging the same events again yields the same list as long as
// they carry ids.
func MergeEvents(existing, incoming []Event) []Event {
	seen := make(map[string]struct{}, len(existing))
	for _, event := range existing {
		if id := event.ID(); id != "" {
			seen[id] = struct{}{}
		}
	}

	merged := slices.Clone(existing)
	for _, event := range incoming {
		id := event.ID()
		if id != "" {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
		}
		merged = append(merged, event)
	}

	slices.SortStableFunc(merged, func(a, b Event) int {
		ta, okA := ParseTime(a.first("occurrenceDatetime", "datetime", "occurrenceDateTime"))
		tb, okB := ParseTime(b.first("occurrenceDatetime", "datetime", "occurrenceDateTime"))
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		default:
			return ta.Compare(tb)
		}
	})

	return merged
}

// WebhookRaw is the payload persisted after a webhook push: the pushed tracker and shipment together
// with the merged events, in the same shape the search endpoint returns.
func WebhookRaw(tracker any, shipment any, events []Event) ([]byte, error) {
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(map[string]any{
		"data": map[string]any{
			"trackings": []any{
				map[string]any{
					"tracker":  tracker,
					"shipment": shipment,
					"events":   events,
				},
			},
		},
	})
}

func decode(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload
}
