package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajkula/GoArrival/config"
)

// Helper to create test config
func createTestConfig(level string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.General.LogLevel = level
	cfg.Logging.Format = "json"
	cfg.Logging.Output = "stdout"
	return cfg
}

func newObservedAdapter(level string) (*ZapAdapter, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), createTestConfig(level)), logs
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  int
	}{
		{name: "ERROR level - only errors", level: "ERROR", want: 1},
		{name: "WARN level - error and warn", level: "WARN", want: 2},
		{name: "INFO level - error, warn, info", level: "INFO", want: 3},
		{name: "DEBUG level - all messages", level: "DEBUG", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedAdapter(tt.level)

			logger.Error("error message", "key", "error_value")
			logger.Warn("warn message", "key", "warn_value")
			logger.Info("info message", "key", "info_value")
			logger.Debug("debug message", "key", "debug_value")

			assert.Equal(t, tt.want, logs.Len())
		})
	}
}

func TestLogger_KeyValueFields(t *testing.T) {
	logger, logs := newObservedAdapter("info")

	logger.Info("Stable file found", "path", "/in/report.xlsx", "size", int64(10))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Stable file found", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/in/report.xlsx", fields["path"])
	assert.EqualValues(t, 10, fields["size"])
}

func TestLogger_DynamicLevelChange(t *testing.T) {
	logger, logs := newObservedAdapter("error")

	logger.Info("dropped")
	assert.Equal(t, 0, logs.Len())

	logger.UpdateLevel("DEBUG")
	assert.Equal(t, "debug", logger.config.General.LogLevel)
	assert.True(t, logger.level.Enabled(zapcore.DebugLevel))

	logger.Debug("kept")
	// the level change itself is logged at info
	assert.Equal(t, 2, logs.FilterMessage("kept").Len()+logs.FilterMessage("Logger level updated dynamically").Len())
}

func TestParseZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseZapLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseZapLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseZapLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseZapLevel("unknown"))
}

func TestNewZapAdapter_FileOutput(t *testing.T) {
	cfg := createTestConfig("info")
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = filepath.Join(t.TempDir(), "arrival.log")

	logger, err := NewZapAdapter(cfg)
	require.NoError(t, err)

	logger.Info("written to file", "attempt", "abc")
	logger.Shutdown()

	data, err := os.ReadFile(cfg.Logging.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"attempt":"abc"`)
}

func TestNewZapAdapter_InvalidOutput(t *testing.T) {
	cfg := createTestConfig("info")
	cfg.Logging.Output = "syslog"

	_, err := NewZapAdapter(cfg)
	assert.Error(t, err)
}
