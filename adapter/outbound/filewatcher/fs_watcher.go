package filewatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ajkula/GoArrival/domain/port/outbound"
)

type FsWatcher struct {
	watcher     *fsnotify.Watcher
	events      chan outbound.FileChangeEvent
	errors      chan error
	watchedDirs map[string]bool
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	running     bool
	stopped     bool
	closed      chan struct{}
}

// NewFSWatcher matches outbound.WatcherFactory
func NewFSWatcher() (outbound.FileWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsWatcher{
		watcher:     fsWatcher,
		events:      make(chan outbound.FileChangeEvent, 256),
		errors:      make(chan error, 16),
		watchedDirs: make(map[string]bool),
		ctx:         ctx,
		cancel:      cancel,
		closed:      make(chan struct{}),
	}

	go fw.forwardEvents()

	return fw, nil
}

// Watch subscribes to changes of the direct children of dir
func (fw *FsWatcher) Watch(ctx context.Context, dir string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return fmt.Errorf("watcher already stopped")
	}

	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	if fw.watchedDirs[absPath] {
		return nil
	}

	if err := fw.watcher.Add(absPath); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", absPath, err)
	}

	fw.watchedDirs[absPath] = true
	fw.running = true

	return nil
}

// Stop releases the OS subscription. It is safe to call more than once,
// and before or without a successful Watch.
func (fw *FsWatcher) Stop() error {
	fw.mu.Lock()

	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	fw.running = false

	fw.cancel()
	closeErr := fw.watcher.Close()
	fw.mu.Unlock()

	// wait for the forwarding goroutine before closing its channels
	<-fw.closed

	close(fw.events)
	close(fw.errors)

	if closeErr != nil {
		return fmt.Errorf("failed to close fsnotify watcher: %w", closeErr)
	}
	return nil
}

func (fw *FsWatcher) Events() <-chan outbound.FileChangeEvent {
	return fw.events
}

func (fw *FsWatcher) Errors() <-chan error {
	return fw.errors
}

func (fw *FsWatcher) IsWatching() bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	return fw.running
}

func (fw *FsWatcher) GetWatchedPaths() []string {
	fw.mu.RLock()
	defer fw.mu.RUnlock()

	paths := make([]string, 0, len(fw.watchedDirs))
	for path := range fw.watchedDirs {
		paths = append(paths, path)
	}
	return paths
}

// forwardEvents converts fsnotify events until the watcher is stopped
func (fw *FsWatcher) forwardEvents() {
	defer close(fw.closed)

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			changeEvent := convertEvent(event)
			if changeEvent == nil {
				continue
			}

			select {
			case fw.events <- *changeEvent:
			case <-fw.ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}

			select {
			case fw.errors <- err:
			case <-fw.ctx.Done():
				return
			}
		}
	}
}

// convertEvent maps fsnotify operations onto FileChangeEvent.
// A file moved into the directory is reported by the OS as Create.
// Chmod carries no arrival information and is dropped.
func convertEvent(event fsnotify.Event) *outbound.FileChangeEvent {
	var eventType outbound.FileEventType

	switch {
	case event.Has(fsnotify.Create):
		eventType = outbound.FileCreated
	case event.Has(fsnotify.Write):
		eventType = outbound.FileModified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		eventType = outbound.FileRemoved
	default:
		return nil
	}

	return &outbound.FileChangeEvent{
		FilePath:  event.Name,
		EventType: eventType,
	}
}
