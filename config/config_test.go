package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajkula/GoArrival/domain/model"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))

	opts := cfg.DetectionOptions()
	assert.Equal(t, ".xlsx", opts.Extension)
	assert.Equal(t, "~$", opts.TransientPrefix)
	assert.Equal(t, 120*time.Second, opts.Timeout)
	assert.Equal(t, time.Second, opts.PollInterval)
	assert.Equal(t, 2*time.Second, opts.SettleTime)
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "arrival.yaml")

	cfg := DefaultConfig()
	cfg.Detection.Strategy = "event"
	cfg.Detection.SettleTime = 1500 * time.Millisecond
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "event", loaded.Detection.Strategy)
	assert.Equal(t, 1500*time.Millisecond, loaded.Detection.SettleTime)
	assert.Equal(t, cfg.HTTP.Port, loaded.HTTP.Port)
}

func TestLoadConfig_DurationsAndRelativeDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arrival.yaml")
	content := `
general:
  logLevel: debug
detection:
  directory: inbox
  strategy: polling
  timeout: 5m
  pollInterval: 500ms
  settleTime: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "inbox"), cfg.Detection.Directory)
	assert.Equal(t, 5*time.Minute, cfg.Detection.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Detection.PollInterval)
	// untouched keys keep their defaults
	assert.Equal(t, model.DefaultExtension, cfg.Detection.Extension)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := map[string]string{
		"bad log level": "general:\n  logLevel: loud\n",
		"bad strategy":  "detection:\n  strategy: carrier-pigeon\n",
		"bad timeout":   "detection:\n  timeout: -1s\n",
		"bad port":      "http:\n  port: 70000\n",
		"tls no cert":   "http:\n  tls: true\n",
		"bad format":    "logging:\n  format: xml\n",
		"file no path":  "logging:\n  output: file\n",
		"not yaml":      "detection: [",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "arrival.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}
