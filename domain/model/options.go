package model

import (
	"strings"
	"time"
)

const (
	DefaultExtension       = ".xlsx"
	DefaultTransientPrefix = "~$"
	DefaultTimeout         = 120 * time.Second
	DefaultPollInterval    = 1 * time.Second
	DefaultSettleTime      = 2 * time.Second
)

// DetectionOptions is passed explicitly into every detection attempt
type DetectionOptions struct {
	// Extension is the target file extension, compared case-insensitively
	Extension string `json:"extension" yaml:"extension"`

	// TransientPrefix excludes editor lock artifacts such as "~$report.xlsx"
	TransientPrefix string `json:"transientPrefix" yaml:"transientPrefix"`

	// Timeout bounds the whole attempt
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// PollInterval is only used by the polling detector
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`

	// SettleTime is the debounce window between the two size samples
	SettleTime time.Duration `json:"settleTime" yaml:"settleTime"`
}

func DefaultDetectionOptions() DetectionOptions {
	return DetectionOptions{
		Extension:       DefaultExtension,
		TransientPrefix: DefaultTransientPrefix,
		Timeout:         DefaultTimeout,
		PollInterval:    DefaultPollInterval,
		SettleTime:      DefaultSettleTime,
	}
}

// Normalize fills zero or negative values with defaults and canonicalizes the extension.
func (o DetectionOptions) Normalize() DetectionOptions {
	if strings.TrimSpace(o.Extension) == "" {
		o.Extension = DefaultExtension
	}
	o.Extension = strings.ToLower(strings.TrimSpace(o.Extension))
	if !strings.HasPrefix(o.Extension, ".") {
		o.Extension = "." + o.Extension
	}

	if o.TransientPrefix == "" {
		o.TransientPrefix = DefaultTransientPrefix
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.SettleTime <= 0 {
		o.SettleTime = DefaultSettleTime
	}
	return o
}
