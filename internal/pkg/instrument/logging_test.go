package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	buf.Reset()
	return out
}

func TestNewLogger_Masking(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, "gotp", "debug", nil, []string{"identifier"})

	ctx := SetCorrelationID(context.Background(), "cid-1")
	logger.InfoContext(ctx, "issued",
		"code", "123456",
		"identifier", "+6281234567890",
		slog.Group("delivery", slog.String("otp", "654321"), slog.String("channel", "SMS")),
		"body", `{"access_token":"tok","status":"ok"}`,
		"headers", map[string]string{"X-API-Key": "secret", "Accept": "json"},
	)

	line := logLine(t, buf)
	assert.Equal(t, "issued", line["msg"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, "cid-1", line["_cID"])
	assert.Equal(t, "gotp", line["service"])
	assert.Equal(t, "***", line["code"])
	assert.Equal(t, "***", line["identifier"])
	assert.Equal(t, map[string]any{"otp": "***", "channel": "SMS"}, line["delivery"])
	assert.JSONEq(t, `{"access_token":"***","status":"ok"}`, line["body"].(string))
	assert.Equal(t, map[string]any{"X-API-Key": "***", "Accept": "json"}, line["headers"])
}

func TestNewLogger_Level(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, "", "warn", nil, nil)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.With("client_secret", "s").Warn("kept")
	line := logLine(t, buf)
	assert.Equal(t, "***", line["client_secret"])
	assert.NotContains(t, line, "service")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel(" ERROR "))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
