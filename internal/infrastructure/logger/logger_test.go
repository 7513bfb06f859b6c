package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arrangemylist/planner/internal/infrastructure/config"
)

func TestSetLevelAffectsDerivedLoggers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	require.NoError(t, err)

	board := log.WithComponent("board")
	board.Debugw("hidden")

	require.NoError(t, log.SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, board.Level())
	board.Debugw("visible")
	_ = log.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
	assert.Contains(t, string(data), `"component":"board"`)
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)

	assert.Error(t, NewNop().SetLevel("loud"))
}

func TestFieldHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.WithRequestID("req-1").WithUserID(7).LogHTTPRequest("GET", "/api/tasks", "curl", "127.0.0.1", 200, 1.5)
	log.WithError(assert.AnError).LogSecurityEvent("login_failed", "ada", "127.0.0.1", map[string]interface{}{"reason": "bad password"})
	log.LogUserAction(7, "note_pinned", map[string]interface{}{"note_id": int64(3)})

	entries := logs.All()
	require.Len(t, entries, 3)

	req := entries[0].ContextMap()
	assert.Equal(t, "HTTP request", entries[0].Message)
	assert.Equal(t, "req-1", req["request_id"])
	assert.Equal(t, int64(7), req["user_id"])
	assert.Equal(t, int64(200), req["status_code"])

	sec := entries[1].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "login_failed", sec["security_event"])
	assert.Equal(t, assert.AnError.Error(), sec["error"])
	assert.Equal(t, "bad password", sec["reason"])

	action := entries[2].ContextMap()
	assert.Equal(t, "note_pinned", action["action"])
	assert.Equal(t, int64(3), action["note_id"])
}
