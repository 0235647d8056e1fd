package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("chapter done", "chapter", "10.0", "images", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "chapter done", entry["msg"])
	assert.Equal(t, "10.0", entry["chapter"])
}

func TestNew_AutoNonTerminalIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "auto", Output: &buf})
	require.NoError(t, err)

	logger.Info("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "auto format on a buffer should be JSON: %s", buf.String())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	require.NoError(t, err)

	logger.Debug("visible", "key", "value")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "key=value")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNewComponentLogger_Nil(t *testing.T) {
	logger := NewComponentLogger(nil, "download")
	require.NotNil(t, logger)
	logger.Info("discarded")
}
