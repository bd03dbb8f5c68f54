package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ajkula/GoArrival/domain/model"
)

// Config holds the detector service configuration
type Config struct {
	// General configuration
	General struct {
		// LogLevel is the logging level
		LogLevel string `yaml:"logLevel"`

		// Development enables human readable, colored logs
		Development bool `yaml:"development"`
	} `yaml:"general"`

	// Detection holds the defaults applied to every detection attempt
	Detection struct {
		// Directory is the watched directory; empty means the executable's directory
		Directory string `yaml:"directory"`

		// Strategy is "polling" or "event"
		Strategy string `yaml:"strategy"`

		// Extension is the target file extension
		Extension string `yaml:"extension"`

		// TransientPrefix excludes editor lock files
		TransientPrefix string `yaml:"transientPrefix"`

		// Timeout bounds one detection attempt
		Timeout time.Duration `yaml:"timeout"`

		// PollInterval is the rescan period of the polling detector
		PollInterval time.Duration `yaml:"pollInterval"`

		// SettleTime is the window between the two size samples
		SettleTime time.Duration `yaml:"settleTime"`
	} `yaml:"detection"`

	// HTTP server configuration
	HTTP struct {
		// Enabled enables the HTTP server
		Enabled bool `yaml:"enabled"`

		// Address to bind the HTTP server
		Address string `yaml:"address"`

		// Port to bind the HTTP server
		Port int `yaml:"port"`

		// TLS enables TLS
		TLS bool `yaml:"tls"`

		// CertFile is the TLS certificate path
		CertFile string `yaml:"certFile"`

		// KeyFile is the TLS private key path
		KeyFile string `yaml:"keyFile"`
	} `yaml:"http"`

	// History configuration
	History struct {
		// Capacity is how many past attempts are kept in memory
		Capacity int `yaml:"capacity"`
	} `yaml:"history"`

	Logging struct {
		Format   string `yaml:"format"` // "json" or "console"
		Output   string `yaml:"output"` // "stdout", "stderr" or "file"
		FilePath string `yaml:"filePath"`
	} `yaml:"logging"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	c := &Config{}

	// General configuration
	c.General.LogLevel = "info"
	c.General.Development = false

	// Detection configuration
	c.Detection.Directory = ""
	c.Detection.Strategy = string(model.StrategyPolling)
	c.Detection.Extension = model.DefaultExtension
	c.Detection.TransientPrefix = model.DefaultTransientPrefix
	c.Detection.Timeout = model.DefaultTimeout
	c.Detection.PollInterval = model.DefaultPollInterval
	c.Detection.SettleTime = model.DefaultSettleTime

	// HTTP server configuration
	c.HTTP.Enabled = true
	c.HTTP.Address = "127.0.0.1"
	c.HTTP.Port = 8080
	c.HTTP.TLS = false
	c.HTTP.CertFile = ""
	c.HTTP.KeyFile = ""

	c.History.Capacity = 100

	// Logging configuration defaults
	c.Logging.Format = "json"
	c.Logging.Output = "stdout"
	c.Logging.FilePath = ""

	return c
}

// DetectionOptions converts the detection section into the per-call value object
func (c *Config) DetectionOptions() model.DetectionOptions {
	return model.DetectionOptions{
		Extension:       c.Detection.Extension,
		TransientPrefix: c.Detection.TransientPrefix,
		Timeout:         c.Detection.Timeout,
		PollInterval:    c.Detection.PollInterval,
		SettleTime:      c.Detection.SettleTime,
	}.Normalize()
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Load the default configuration
	config := DefaultConfig()

	// Decode the YAML file
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Relative watched directories are relative to the config file
	if config.Detection.Directory != "" && !filepath.IsAbs(config.Detection.Directory) {
		dir, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		config.Detection.Directory = filepath.Join(dir, config.Detection.Directory)
	}

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	// Encode the configuration to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Create parent directory if necessary
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// WriteConfig encodes the configuration as YAML to w
func WriteConfig(config *Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Check the log level
	logLevel := strings.ToLower(config.General.LogLevel)
	if logLevel != "debug" && logLevel != "info" && logLevel != "warn" && logLevel != "error" {
		return fmt.Errorf("invalid log level: %s", config.General.LogLevel)
	}

	if _, err := model.ParseStrategy(config.Detection.Strategy); err != nil {
		return err
	}

	if config.Detection.Timeout <= 0 {
		return fmt.Errorf("invalid detection timeout: %s", config.Detection.Timeout)
	}
	if config.Detection.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval: %s", config.Detection.PollInterval)
	}
	if config.Detection.SettleTime <= 0 {
		return fmt.Errorf("invalid settle time: %s", config.Detection.SettleTime)
	}

	// check ports
	if config.HTTP.Enabled && (config.HTTP.Port < 1 || config.HTTP.Port > 65535) {
		return fmt.Errorf("invalid HTTP port: %d", config.HTTP.Port)
	}

	// Check the TLS configurations
	if config.HTTP.TLS {
		if config.HTTP.CertFile == "" || config.HTTP.KeyFile == "" {
			return fmt.Errorf("TLS enabled but certificate or key file not specified")
		}
		if _, err := os.Stat(config.HTTP.CertFile); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", config.HTTP.CertFile)
		}
		if _, err := os.Stat(config.HTTP.KeyFile); os.IsNotExist(err) {
			return fmt.Errorf("key file not found: %s", config.HTTP.KeyFile)
		}
	}

	if config.History.Capacity < 1 {
		return fmt.Errorf("invalid history capacity: %d", config.History.Capacity)
	}

	format := strings.ToLower(config.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	switch strings.ToLower(config.Logging.Output) {
	case "stdout", "stderr":
	case "file":
		if config.Logging.FilePath == "" {
			return fmt.Errorf("file log output requires logging.filePath")
		}
	default:
		return fmt.Errorf("invalid log output: %s", config.Logging.Output)
	}

	return nil
}
