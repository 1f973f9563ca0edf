package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelFallback(t *testing.T) {
	l := New("chatty", "text")
	assert.Equal(t, log.InfoLevel, l.GetLevel())

	l = New("debug", "text")
	assert.Equal(t, log.DebugLevel, l.GetLevel())
}

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "info", "json")

	l.WithField("session_id", 7).Info("game stopped")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "game stopped", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.EqualValues(t, 7, line["session_id"])
}

func TestNewWithOutput_TextFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "warn", "text")

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "msg=shown")
}
