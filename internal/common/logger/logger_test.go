package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_WritesStructuredEntries(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := NewWithWriter("order-service", buf)

	lg.Info("order_created", map[string]any{"order_number": 101})
	lg.Error("store_failed", errors.New("boom"), nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "order-service", entries[0]["service"])
	assert.Equal(t, "order_created", entries[0]["action"])
	assert.Equal(t, "order_created", entries[0]["message"])
	assert.EqualValues(t, 101, entries[0]["order_number"])
	assert.Contains(t, entries[0], "timestamp")
	assert.Contains(t, entries[0], "hostname")

	assert.Equal(t, "error", entries[1]["level"])
	errObj, ok := entries[1]["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", errObj["msg"])
}

func TestLogger_SetLevel(t *testing.T) {
	testCases := map[string]struct {
		level    string
		expected int
	}{
		"should keep debug entries at debug level":  {level: "debug", expected: 2},
		"should drop debug entries at warn level":    {level: "warn", expected: 1},
		"should ignore unknown levels":               {level: "verbose", expected: 2},
		"should ignore empty level and keep default": {level: "", expected: 2},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			lg := NewWithWriter("test", buf)
			lg.SetLevel(tc.level)

			lg.Debug("heartbeat_sent", nil)
			lg.Warn("listener_evicted", nil)

			assert.Len(t, decodeLines(t, buf), tc.expected)
		})
	}
}

func TestLogger_Named(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := NewWithWriter("bootstrap", buf).Named("broadcaster")

	lg.Info("listener_subscribed", nil)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "broadcaster", entries[0]["service"])
}
