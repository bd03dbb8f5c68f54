package model

import (
	"fmt"
	"strings"
	"time"
)

// DirectoryEntry is a single observation of a filesystem entry.
// It is re-read on every check and never cached beyond one cycle.
type DirectoryEntry struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	IsDir   bool      `json:"isDir"`
}

// Strategy selects which detector serves an attempt
type Strategy string

const (
	StrategyPolling Strategy = "polling"
	StrategyEvent   Strategy = "event"
)

// ParseStrategy converts a user supplied name into a Strategy.
// An empty name selects the polling detector.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "poll", string(StrategyPolling):
		return StrategyPolling, nil
	case "events", "notify", string(StrategyEvent):
		return StrategyEvent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Outcome is the terminal state of one detection attempt
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeCanceled Outcome = "canceled"
)

// DetectionResult is produced exactly once per detection attempt.
// Path is set if and only if Outcome is OutcomeFound.
type DetectionResult struct {
	AttemptID  string    `json:"attemptId"`
	Strategy   Strategy  `json:"strategy"`
	Directory  string    `json:"directory"`
	Outcome    Outcome   `json:"outcome"`
	Path       string    `json:"path,omitempty"`
	Size       int64     `json:"size,omitempty"`
	ModTime    time.Time `json:"modTime,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (r *DetectionResult) Found() bool {
	return r != nil && r.Outcome == OutcomeFound && r.Path != ""
}

func (r *DetectionResult) Elapsed() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// DetectionRequest is what callers hand to the arrival service
type DetectionRequest struct {
	Directory string           `json:"directory"`
	Strategy  Strategy         `json:"strategy"`
	Options   DetectionOptions `json:"options"`
}
