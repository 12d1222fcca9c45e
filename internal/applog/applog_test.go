package applog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	line := format(at, "ERROR", "host.close", errors.New("no tab with id 4"), []any{"tab", 4, "source", "bridge"})

	assert.Equal(t, `2024-03-01T12:30:00.000Z ERROR host.close err="no tab with id 4" tab=4 source=bridge`+"\n", line)
}

func TestFormatOddKeyValues(t *testing.T) {
	line := format(time.Unix(0, 0), "INFO", "x", nil, []any{"a", 1, "dangling"})
	assert.True(t, strings.HasSuffix(line, " a=1 extra=dangling\n"), line)
}

func TestQuoteTruncates(t *testing.T) {
	long := strings.Repeat("x", maxValueLen+10)
	got := quote(long)
	assert.Equal(t, maxValueLen+len(truncSuffix), len(got))
}

func TestInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	Info("fetch.done", "tabs", 3)
	Warn("enrich.fallback", "tab", -1)
	Close()

	data, err := os.ReadFile(filepath.Join(dir, "tabmon.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO fetch.done tabs=3")
	assert.Contains(t, string(data), "WARN enrich.fallback tab=-1")

	// After Close every call is a no-op.
	Info("ignored")
	data, _ = os.ReadFile(filepath.Join(dir, "tabmon.log"))
	assert.NotContains(t, string(data), "ignored")
}
