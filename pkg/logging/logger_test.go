package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestDir points the package at a temp directory and resets global state.
func setupTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	origLogDir, origInitErr := logDir, initErr
	origSessionID := sessionID
	origLevel := level.Level()

	logDir = dir
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir, initErr = origLogDir, origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
		level.SetLevel(origLevel)
	})
	return dir
}

func TestNewLogger_WritesJSONToSessionFile(t *testing.T) {
	dir := setupTestDir(t)

	logger, err := NewLogger("agent")
	require.NoError(t, err)

	logger.Infof("step %d started", 1)
	logger.Debugf("hidden at info level")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())

	assert.Equal(t, filepath.Join(dir, logger.SessionID()+"-pilot.log"), logger.LogPath())

	data, err := os.ReadFile(logger.LogPath())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "agent", entry["logger"])
	assert.Equal(t, "step 1 started", entry["msg"])
	assert.Equal(t, logger.SessionID(), entry["session"])
}

func TestComponentsShareSession(t *testing.T) {
	setupTestDir(t)

	a, err := NewLogger("agent")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewLogger("browser")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, a.SessionID(), b.SessionID())
	assert.Equal(t, a.LogPath(), b.LogPath())
	assert.Equal(t, GetSessionID(), a.SessionID())
}

func TestSetLevel(t *testing.T) {
	setupTestDir(t)

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	assert.Error(t, SetLevel("chatty"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestWithFields(t *testing.T) {
	setupTestDir(t)

	core, logs := observer.New(zapcore.DebugLevel)
	l := newWithCore("tools", core).With("tool", "browser_click")
	l.Warnf("selector %q not found", "#post")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, `selector "#post" not found`, entries[0].Message)
	assert.Equal(t, "tools", entries[0].LoggerName)
	assert.Equal(t, "browser_click", entries[0].ContextMap()["tool"])
}

func TestFallbackWhenDirectoryUnavailable(t *testing.T) {
	dir := setupTestDir(t)
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	logDir = filepath.Join(blocker, "logs")

	l, err := NewLogger("agent")
	assert.Error(t, err)
	require.NotNil(t, l)
	assert.Empty(t, l.LogPath())

	_, err = GetLogDirectory()
	assert.Error(t, err)
}
