package observability

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/streetlight-datagen/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
	assert.Same(t, logger, slog.Default())
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RowsWritten.WithLabelValues("street_lights").Add(5)
	a.Runs.WithLabelValues("all", OutcomeSuccess).Inc()

	assert.InDelta(t, 5, testutil.ToFloat64(a.RowsWritten.WithLabelValues("street_lights")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RowsWritten.WithLabelValues("street_lights")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(a.Runs.WithLabelValues("all", OutcomeSuccess)), 0)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lightgen.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// The default registry always carries the Go runtime collector.
	assert.Contains(t, string(data), "go_goroutines")
}
