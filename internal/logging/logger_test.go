package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: LevelError, Format: FormatText, Output: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Error("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogExecution("web1", 0, 0)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "command executed", entry["msg"])
	assert.Equal(t, "web1", entry["host"])
}

func TestLoggerTeesToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := NewLogger(Config{Level: LevelInfo, Format: FormatText, Output: &buf, File: path})
	require.NoError(t, err)

	logger.Info("fan-out finished")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fan-out finished")
	assert.Contains(t, buf.String(), "fan-out finished")
}
