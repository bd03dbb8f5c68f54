package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. ARRIVAL_DETECTION_TIMEOUT=30s
const EnvPrefix = "ARRIVAL"

// overridable keys, in "section.field" form matching the YAML layout
var overrideKeys = []string{
	"general.logLevel",
	"general.development",
	"detection.directory",
	"detection.strategy",
	"detection.extension",
	"detection.transientPrefix",
	"detection.timeout",
	"detection.pollInterval",
	"detection.settleTime",
	"http.enabled",
	"http.address",
	"http.port",
	"history.capacity",
	"logging.format",
	"logging.output",
	"logging.filePath",
}

// NewOverrides returns a viper instance reading ARRIVAL_* environment variables.
// Callers bind command-line flags onto it with BindPFlag using the same keys.
func NewOverrides() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range overrideKeys {
		// AutomaticEnv only answers for keys viper already knows about
		_ = v.BindEnv(key)
	}
	return v
}

// ApplyOverrides copies every key set in v onto the configuration and validates the result.
// Flags left at their default and unset environment variables do not count as set.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	set := func(key string) bool { return v.IsSet(key) }

	if set("general.logLevel") {
		c.General.LogLevel = v.GetString("general.logLevel")
	}
	if set("general.development") {
		c.General.Development = v.GetBool("general.development")
	}

	if set("detection.directory") {
		c.Detection.Directory = v.GetString("detection.directory")
	}
	if set("detection.strategy") {
		c.Detection.Strategy = v.GetString("detection.strategy")
	}
	if set("detection.extension") {
		c.Detection.Extension = v.GetString("detection.extension")
	}
	if set("detection.transientPrefix") {
		c.Detection.TransientPrefix = v.GetString("detection.transientPrefix")
	}
	if set("detection.timeout") {
		c.Detection.Timeout = v.GetDuration("detection.timeout")
	}
	if set("detection.pollInterval") {
		c.Detection.PollInterval = v.GetDuration("detection.pollInterval")
	}
	if set("detection.settleTime") {
		c.Detection.SettleTime = v.GetDuration("detection.settleTime")
	}

	if set("http.enabled") {
		c.HTTP.Enabled = v.GetBool("http.enabled")
	}
	if set("http.address") {
		c.HTTP.Address = v.GetString("http.address")
	}
	if set("http.port") {
		c.HTTP.Port = v.GetInt("http.port")
	}

	if set("history.capacity") {
		c.History.Capacity = v.GetInt("history.capacity")
	}

	if set("logging.format") {
		c.Logging.Format = v.GetString("logging.format")
	}
	if set("logging.output") {
		c.Logging.Output = v.GetString("logging.output")
	}
	if set("logging.filePath") {
		c.Logging.FilePath = v.GetString("logging.filePath")
	}

	return validateConfig(c)
}
