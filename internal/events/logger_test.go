package events_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuverse/visavault/internal/events"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewLogger("warn", "text", &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewLogger("info", "json", &buf)

	logger.WithField("user_id", "u-123").Info("upload complete")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "upload complete", entry["msg"])
	assert.Equal(t, "u-123", entry["user_id"])
}

func TestLogger_FieldsDoNotLeakBetweenLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := events.NewLogger("info", "json", &buf)

	child := base.WithField("component", "store")
	_ = child

	base.Info("plain entry")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasComponent := entry["component"]
	assert.False(t, hasComponent)
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewLogger("info", "text", &buf)

	logger.WithError(errors.New("boom")).Error("operation failed")

	assert.True(t, strings.Contains(buf.String(), "error=boom"))
}
