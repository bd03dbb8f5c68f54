package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// EventDetector subscribes to filesystem notifications for the directory and settles
// each notified candidate on its own goroutine. The first stable candidate wins.
type EventDetector struct {
	reader     outbound.DirectoryReader
	newWatcher outbound.WatcherFactory
	settle     *SettleChecker
	logger     outbound.Logger

	// ready, when set, receives a value once the subscription is registered
	ready chan<- struct{}
}

func NewEventDetector(
	reader outbound.DirectoryReader,
	newWatcher outbound.WatcherFactory,
	logger outbound.Logger,
) *EventDetector {
	return &EventDetector{
		reader:     reader,
		newWatcher: newWatcher,
		settle:     NewSettleChecker(reader, logger),
		logger:     logger,
	}
}

func (d *EventDetector) Strategy() model.Strategy {
	return model.StrategyEvent
}

func (d *EventDetector) Detect(ctx context.Context, dir string, opts model.DetectionOptions) (*model.DetectionResult, error) {
	opts = opts.Normalize()
	if err := validateDirectory(d.reader, dir); err != nil {
		return nil, err
	}

	filter := NewCandidateFilter(opts)
	result := newAttempt(model.StrategyEvent, dir)

	// an atomic save onto an existing file is notified as a create
	baseline, err := captureBaseline(d.reader, dir, filter)
	if err != nil {
		return nil, err
	}

	watcher, err := d.newWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: creating watcher: %w", model.ErrSubscription, err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)

	if err := watcher.Watch(ctx, dir); err != nil {
		cancel()
		if stopErr := watcher.Stop(); stopErr != nil {
			d.logger.Warn("Failed to release watcher", "dir", dir, "error", stopErr)
		}
		return nil, fmt.Errorf("%w: watching %s: %w", model.ErrSubscription, dir, err)
	}

	found := make(chan model.DirectoryEntry, 1)
	tracker := newSettleTracker()
	var wg conc.WaitGroup

	// in-flight settle checks abort as soon as ctx is canceled
	defer func() {
		cancel()
		if err := watcher.Stop(); err != nil {
			d.logger.Warn("Failed to release watcher", "dir", dir, "error", err)
		}
		wg.Wait()
	}()

	settle := func(path string) {
		if !tracker.begin(path) {
			return
		}
		wg.Go(func() {
			for {
				entry, stable := d.settle.Check(ctx, path, opts.SettleTime)
				if stable && filter.Accepts(entry) {
					select {
					case found <- entry:
					default:
					}
					tracker.done(path)
					return
				}
				if ctx.Err() != nil || !tracker.again(path) {
					return
				}
			}
		})
	}

	if d.ready != nil {
		d.ready <- struct{}{}
	}

	d.logger.Info("Watching for new file",
		"attempt", result.AttemptID,
		"dir", dir,
		"baseline", len(baseline),
		"timeout", opts.Timeout,
		"settleTime", opts.SettleTime)

	events := watcher.Events()
	errs := watcher.Errors()

	for {
		select {
		case entry := <-found:
			return d.report(result, entry), nil

		case <-ctx.Done():
			select {
			case entry := <-found:
				return d.report(result, entry), nil
			default:
			}
			finishWithout(result, ctx)
			d.logger.Info("No stable file arrived",
				"attempt", result.AttemptID,
				"outcome", result.Outcome,
				"elapsed", result.Elapsed())
			return result, nil

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch event.EventType {
			case outbound.FileCreated:
				if !filter.AcceptsName(filepath.Base(event.FilePath)) {
					continue
				}
				if _, seen := baseline[event.FilePath]; seen {
					d.logger.Debug("Ignoring baseline file", "attempt", result.AttemptID, "path", event.FilePath)
					continue
				}
				d.logger.Debug("Candidate notified", "attempt", result.AttemptID, "path", event.FilePath)
				tracker.created(event.FilePath)
				settle(event.FilePath)
			case outbound.FileModified:
				// only files that arrived during this attempt are re-armed
				if tracker.isNew(event.FilePath) {
					settle(event.FilePath)
				}
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			d.logger.Warn("Watcher error", "attempt", result.AttemptID, "error", err)
		}
	}
}

func (d *EventDetector) report(result *model.DetectionResult, entry model.DirectoryEntry) *model.DetectionResult {
	finishFound(result, entry)
	d.logger.Info("Stable file found",
		"attempt", result.AttemptID,
		"path", result.Path,
		"size", result.Size,
		"elapsed", result.Elapsed())
	return result
}

// settleTracker remembers which paths were created during the attempt and keeps at
// most one settle check in flight per path. A notification arriving while a check
// runs marks the path dirty so an unstable check is repeated instead of dropped.
type settleTracker struct {
	mu       sync.Mutex
	arrived  map[string]bool
	inflight map[string]bool
	dirty    map[string]bool
}

func newSettleTracker() *settleTracker {
	return &settleTracker{
		arrived:  make(map[string]bool),
		inflight: make(map[string]bool),
		dirty:    make(map[string]bool),
	}
}

func (t *settleTracker) created(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.arrived[path] = true
}

func (t *settleTracker) isNew(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.arrived[path]
}

// begin returns false when a check for path is already running
func (t *settleTracker) begin(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight[path] {
		t.dirty[path] = true
		return false
	}
	t.inflight[path] = true
	t.dirty[path] = false
	return true
}

// again reports whether an unstable check should run once more
func (t *settleTracker) again(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dirty[path] {
		t.dirty[path] = false
		return true
	}
	delete(t.inflight, path)
	return false
}

func (t *settleTracker) done(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, path)
	delete(t.dirty, path)
}
