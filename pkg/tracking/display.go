package tracking

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// DisplayEvent is a tracking event prepared for the shipment list.
type DisplayEvent struct {
	Status   string     `json:"status"`
	Time     *time.Time `json:"time"`
	RawTime  string     `json:"rawTime,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Summary is the shipment level view of a raw payload for when there are no events.
type Summary struct {
	StatusMilestone string `json:"statusMilestone,omitempty"`
	ExpectedDate    string `json:"expectedDate,omitempty"`
	TransitTime     string `json:"transitTime,omitempty"`
	Message         string `json:"message,omitempty"`
}

// DisplayEvents returns the events of a persisted payload newest first. Events without a time are
// listed last in their stored order.
func DisplayEvents(raw []byte) []DisplayEvent {
	r := decode(raw)
	if r == nil {
		return nil
	}

	var events []DisplayEvent
	for _, event := range displaySource(r) {
		e := DisplayEvent{
			Status:   event.first("status", "description", "statusDescription", "message", "eventStatus", "text"),
			RawTime:  event.first("occurrenceDatetime", "occurrenceDateTime", "datetime", "occurrenceDate", "date"),
			Location: FormatLocation(event["location"]),
		}
		if t, ok := ParseTime(e.RawTime); ok {
			e.Time = &t
		}
		events = append(events, e)
	}

	slices.SortStableFunc(events, func(a, b DisplayEvent) int {
		switch {
		case a.Time == nil && b.Time == nil:
			return 0
		case a.Time == nil:
			return 1
		case b.Time == nil:
			return -1
		default:
			return b.Time.Compare(*a.Time)
		}
	})
	return events
}

// LatestUpdate describes the newest event as "status — location" or whichever of the two is known.
func LatestUpdate(events []DisplayEvent) string {
	if len(events) == 0 {
		return ""
	}
	latest := events[0]
	status := latest.Status
	if status == "" {
		for _, event := range events {
			if event.Status != "" {
				status = event.Status
				break
			}
		}
	}
	switch {
	case status != "" && latest.Location != "":
		return status + " — " + latest.Location
	case status != "":
		return status
	default:
		return latest.Location
	}
}

// FormatLocation renders an event location given either as text ("LAS VEGAS NV") or as an object
// with place, city, state, country and address fields.
func FormatLocation(location any) string {
	if s, ok := location.(string); ok {
		return strings.TrimSpace(s)
	}
	l := asMap(location)
	if l == nil {
		return ""
	}
	if place := firstString(l, "place"); place != "" {
		return place
	}

	var parts []string
	for _, key := range []string{"city", "state"} {
		if part := firstString(l, key); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		joined := strings.Join(parts, ", ")
		if country := firstString(l, "countryCode", "country"); country != "" {
			return joined + " " + country
		}
		return joined
	}
	return firstString(l, "address")
}

var milestoneMessages = map[string]string{
	"in_transit":       "Your shipment is on the way!",
	"in transit":       "Your shipment is on the way!",
	"delivered":        "Delivered",
	"out_for_delivery": "Out for delivery",
	"out for delivery": "Out for delivery",
	"info_received":    "Preparing for shipment",
	"pending":          "Preparing for shipment",
	"exception":        "Exception — check tracking",
}

// ShipmentSummary extracts the milestone, expected date and transit time from a persisted payload.
func ShipmentSummary(raw []byte) Summary {
	r := decode(raw)
	if r == nil {
		return Summary{}
	}
	data := r
	if d := asMap(r["data"]); d != nil {
		data = d
	}

	item := firstItem(data, "trackings", "trackers")
	if item == nil {
		item = asMap(firstPresent(data, "tracking", "tracker"))
	}
	if item == nil {
		return Summary{}
	}

	shipment := asMap(item["shipment"])
	statistics := asMap(item["statistics"])
	if statistics == nil {
		statistics = asMap(shipment["statistics"])
	}

	summary := Summary{
		StatusMilestone: firstString(shipment, "statusMilestone", "status"),
		ExpectedDate:    firstString(shipment, "estimatedDeliveryDate", "expectedDeliveryDate"),
	}
	if summary.StatusMilestone == "" {
		summary.StatusMilestone = firstString(data, "statusMilestone")
	}
	if summary.ExpectedDate == "" {
		summary.ExpectedDate = firstString(data, "estimatedDeliveryDate", "expectedDeliveryDate")
	}

	transit := firstPresent(statistics, "transitTime", "transit_time")
	if transit == nil {
		transit = firstPresent(shipment, "transitTime", "transit_time")
	}
	switch v := transit.(type) {
	case float64:
		summary.TransitTime = fmt.Sprintf("%g day", v)
		if v != 1 {
			summary.TransitTime += "s"
		}
	case string:
		summary.TransitTime = strings.TrimSpace(v)
	}

	summary.Message = milestoneMessages[strings.ToLower(summary.StatusMilestone)]
	return summary
}

// displaySource looks for events in the known payload shapes first and falls back to searching the
// payload for the first list of event-like objects.
func displaySource(r map[string]any) []Event {
	data := asMap(firstPresent(r, "data", "result"))
	if data == nil {
		data = r
	}

	single := asMap(firstPresent(data, "tracking", "tracker"))
	if single == nil {
		single = asMap(firstPresent(r, "tracking", "tracker"))
	}
	if single != nil {
		events := asEvents(firstPresent(single, "events", "trackingActivities", "activities"))
		if events == nil {
			events = asEvents(data["events"])
		}
		if len(events) > 0 {
			return events
		}
	}

	list := asSlice(firstPresent(data, "trackings", "trackers"))
	if list == nil {
		list = asSlice(firstPresent(r, "trackings", "trackers"))
	}
	if len(list) > 0 {
		if first := asMap(list[0]); first != nil {
			v := firstPresent(first, "events", "trackingActivities", "activities")
			if v == nil {
				v = asMap(first["shipment"])["events"]
			}
			if v == nil {
				v = data["events"]
			}
			if events := asEvents(v); len(events) > 0 {
				return events
			}
		}
	}

	if events := asEvents(data["events"]); len(events) > 0 {
		return events
	}

	return findEvents(r, 0)
}

var eventKeys = []string{"status", "statusDescription", "description", "occurrenceDatetime", "occurrenceDateTime", "datetime"}

func looksLikeEvent(v any) bool {
	m := asMap(v)
	if m == nil {
		return false
	}
	for _, key := range eventKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func findEvents(v any, depth int) []Event {
	if depth > 10 {
		return nil
	}
	if list, ok := v.([]any); ok {
		if len(list) > 0 && looksLikeEvent(list[0]) {
			return asEvents(list)
		}
		return nil
	}

	m := asMap(v)
	if m == nil {
		return nil
	}
	preferred := []string{"events", "trackingActivities", "activities", "trackings", "trackers"}
	for _, key := range preferred {
		if found := findEvents(m[key], depth+1); len(found) > 0 {
			return found
		}
	}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		if found := findEvents(m[key], depth+1); len(found) > 0 {
			return found
		}
	}
	return nil
}
