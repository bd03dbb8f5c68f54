package outbound

import (
	"context"
)

type FileEventType string

const (
	// FileCreated covers both newly created entries and entries moved into the directory
	FileCreated  FileEventType = "create"
	FileModified FileEventType = "modify"
	FileRemoved  FileEventType = "delete"
)

// represents a file system change event
type FileChangeEvent struct {
	FilePath  string        `json:"filePath"`  // Path to the changed file
	EventType FileEventType `json:"eventType"` // Type of event: "create", "modify", "delete"
}

// defines operations for monitoring a directory for changes
type FileWatcher interface {
	// starts monitoring a directory (non-recursive)
	Watch(ctx context.Context, dir string) error

	// stops watching and releases the subscription
	Stop() error

	// returns a channel for receiving file change events
	Events() <-chan FileChangeEvent

	// returns a channel for receiving file watcher errors
	Errors() <-chan error

	// returns true if the watcher is currently monitoring a directory
	IsWatching() bool

	// returns a list of currently watched paths
	GetWatchedPaths() []string
}

// WatcherFactory creates a fresh watcher, one per detection attempt
type WatcherFactory func() (FileWatcher, error)
