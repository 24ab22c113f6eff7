package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FileReceivesErrorsOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mdtran.log")
	var console bytes.Buffer

	logger, closeFn, err := New(Options{File: path, Console: &console})
	require.NoError(t, err)

	logger.Info("translation started")
	logger.Warn("journal write failed")
	logger.Error("critical error", zap.String("command", "mdtran translate"), zap.Error(errors.New("boom")))
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "critical error", entry["msg"])
	assert.Equal(t, "mdtran translate", entry["command"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "timestamp")

	assert.NotContains(t, console.String(), "translation started")
	assert.Contains(t, console.String(), "journal write failed")
	assert.NotContains(t, console.String(), "critical error")
}

func TestNew_Verbose(t *testing.T) {
	var console bytes.Buffer

	logger, closeFn, err := New(Options{Verbose: true, Console: &console})
	require.NoError(t, err)
	logger.Debug("fragment translated")
	closeFn()

	assert.Contains(t, console.String(), "fragment translated")
}

func TestNew_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdtran.log")

	for i := 0; i < 2; i++ {
		logger, closeFn, err := New(Options{File: path, Console: &bytes.Buffer{}})
		require.NoError(t, err)
		logger.Error("failure")
		closeFn()
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\"failure\""))
}

func TestNew_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, _, err := New(Options{File: filepath.Join(blocker, "mdtran.log")})
	assert.Error(t, err)
}
