package tracking

import (
	"fmt"
	"strings"
	"time"
)

// Event is a single tracking event as received from the provider.
type Event map[string]any

// ID returns the provider's event id or "" if the event has none. Ids that are not strings are
// formatted so they still identify the event.
func (e Event) ID() string {
	switch id := e["eventId"].(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// first returns the first non-empty string value among keys.
func (e Event) first(keys ...string) string {
	return firstString(e, keys...)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asEvents(v any) []Event {
	items := asSlice(v)
	if len(items) == 0 {
		return nil
	}
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if m := asMap(item); m != nil {
			events = append(events, m)
		}
	}
	return events
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(asString(m[key])); s != "" {
			return s
		}
	}
	return ""
}

// firstPresent returns the value of the first key that is set and not null.
func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// firstItem returns the first element of the first list found under keys.
func firstItem(m map[string]any, keys ...string) map[string]any {
	list := asSlice(firstPresent(m, keys...))
	if len(list) == 0 {
		return nil
	}
	return asMap(list[0])
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTime parses the timestamps found in tracking payloads. Timestamps without a zone are taken
// as UTC.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
