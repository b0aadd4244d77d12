package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolInvocation(t *testing.T) {
	ti := NewToolInvocation("calendar_select").WithAccount("work").WithOperation("select")

	_, err := uuid.Parse(ti.ID)
	assert.NoError(t, err)
	assert.Equal(t, "calendar_select", ti.Tool)
	assert.False(t, ti.StartTime.IsZero())

	other := NewToolInvocation("calendar_select")
	assert.NotEqual(t, ti.ID, other.ID)
}

func TestToolInvocation_Complete(t *testing.T) {
	ok := NewToolInvocation("t").Complete("", "")
	assert.True(t, ok.Success)
	assert.Equal(t, StatusSuccess, ok.Status())

	failed := NewToolInvocation("t").Complete("invalid_input", "Invalid input: bad date")
	assert.False(t, failed.Success)
	assert.Equal(t, StatusError, failed.Status())
	assert.Equal(t, "invalid_input", failed.ErrorKind)
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	al := NewAuditLogger(logger, AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation("calendar_clear_all_events").
		WithAccount("work").
		WithArguments(map[string]string{"calendarName": "Work"}).
		Complete("upstream_unavailable", "Failed to connect to Google Calendar API: quota")
	al.LogToolInvocation(context.Background(), ti)

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "tool_failed", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "calendar_clear_all_events", entry["tool"])
	assert.Equal(t, "upstream_unavailable", entry["error_kind"])
	assert.Equal(t, ti.ID, entry["invocation_id"])
	assert.NotContains(t, entry, "arguments")
}

func TestAuditLogger_IncludeArguments(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: true, IncludeArguments: true})

	al.LogToolInvocation(context.Background(), NewToolInvocation("calendar_select").
		WithArguments(map[string]string{"calendarName": "Work"}).
		Complete("", ""))

	entry := decodeLogLine(t, &buf)
	assert.Equal(t, "tool_executed", entry["msg"])
	assert.Equal(t, map[string]any{"calendarName": "Work"}, entry["arguments"])
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})
	al.LogToolInvocation(context.Background(), NewToolInvocation("t").Complete("", ""))
	assert.Zero(t, buf.Len())

	var nilLogger *AuditLogger
	nilLogger.LogToolInvocation(context.Background(), NewToolInvocation("t"))
}
