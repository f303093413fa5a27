package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyJSONHandler(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	replaceTime := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Time(a.Key, fixedTime)
		}
		return a
	}

	for _, prettyPrint := range []bool{true, false} {
		t.Run(map[bool]string{true: "PrettyPrint", false: "Compact"}[prettyPrint], func(t *testing.T) {
			var buf bytes.Buffer
			opts := &PrettyJSONHandlerOptions{
				HandlerOptions: slog.HandlerOptions{ReplaceAttr: replaceTime},
				PrettyPrint:    prettyPrint,
			}
			logger := slog.New(NewPrettyJSONHandler(&buf, opts))

			logger.Info("test message", "number", 42)

			got := buf.String()
			assert.Equal(t, '\n', rune(got[len(got)-1]), "want output to end with a newline")
			assert.Equal(t, prettyPrint, bytes.Contains(buf.Bytes(), []byte("\n  ")))
			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, "INFO", record["level"])
			assert.Equal(t, "test message", record["msg"])
			assert.Equal(t, "2024-01-01T00:00:00Z", record["time"])
			assert.Equal(t, float64(42), record["number"])
		})
	}
}

func TestPrettyJSONHandlerKeepsAttributesAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyJSONHandler(&buf, &PrettyJSONHandlerOptions{PrettyPrint: true}))

	logger.With("service", "volunteer-manager").WithGroup("request").Info("test message", "path", "/events")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "volunteer-manager", record["service"])
	assert.Equal(t, map[string]any{"path": "/events"}, record["request"])
	assert.Contains(t, buf.String(), "\n  ")
}

func TestPrettyJSONHandlerWithNilOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyJSONHandler(&buf, nil))

	logger.Info("test message")

	assert.NotZero(t, buf.Len())
}
