package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Error(msg string, args ...any) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l *testLogger) Warn(msg string, args ...any)  { l.t.Logf("WARN: %s %v", msg, args) }
func (l *testLogger) Info(msg string, args ...any)  { l.t.Logf("INFO: %s %v", msg, args) }
func (l *testLogger) Debug(msg string, args ...any) { l.t.Logf("DEBUG: %s %v", msg, args) }

// fastOptions keeps detector tests well under a second per case
func fastOptions(timeout time.Duration) model.DetectionOptions {
	return model.DetectionOptions{
		Timeout:      timeout,
		PollInterval: 100 * time.Millisecond,
		SettleTime:   100 * time.Millisecond,
	}
}

// scriptedReader answers Stat calls from a fixed script, then keeps repeating the last answer
type scriptedReader struct {
	mu    sync.Mutex
	stats []statAnswer
	calls int
}

type statAnswer struct {
	size int64
	err  error
}

func (r *scriptedReader) CheckDirectory(dir string) error { return nil }

func (r *scriptedReader) ReadDir(dir string) ([]model.DirectoryEntry, error) { return nil, nil }

func (r *scriptedReader) Stat(path string) (model.DirectoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.calls
	if i >= len(r.stats) {
		i = len(r.stats) - 1
	}
	r.calls++

	answer := r.stats[i]
	if answer.err != nil {
		return model.DirectoryEntry{}, answer.err
	}
	return model.DirectoryEntry{Path: path, Name: "report.xlsx", Size: answer.size}, nil
}

var errVanished = &os.PathError{Op: "stat", Path: "report.xlsx", Err: os.ErrNotExist}

// fakeWatcher lets tests deliver notifications by hand
type fakeWatcher struct {
	events   chan outbound.FileChangeEvent
	errs     chan error
	watchErr error

	mu      sync.Mutex
	watched []string
	stops   int
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events: make(chan outbound.FileChangeEvent, 64),
		errs:   make(chan error, 4),
	}
}

func (w *fakeWatcher) factory() outbound.WatcherFactory {
	return func() (outbound.FileWatcher, error) { return w, nil }
}

func (w *fakeWatcher) Watch(ctx context.Context, dir string) error {
	if w.watchErr != nil {
		return w.watchErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watched = append(w.watched, dir)
	return nil
}

func (w *fakeWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stops++
	return nil
}

func (w *fakeWatcher) Events() <-chan outbound.FileChangeEvent { return w.events }
func (w *fakeWatcher) Errors() <-chan error                    { return w.errs }

func (w *fakeWatcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched) > 0 && w.stops == 0
}

func (w *fakeWatcher) GetWatchedPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.watched...)
}

func (w *fakeWatcher) stopCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stops
}
