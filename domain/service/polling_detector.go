package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// PollingDetector rescans the directory every poll interval and reports the first
// new candidate whose size settles. It runs entirely on the calling goroutine.
type PollingDetector struct {
	reader outbound.DirectoryReader
	settle *SettleChecker
	logger outbound.Logger

	// ready, when set, receives a value once the baseline has been captured
	ready chan<- struct{}
}

func NewPollingDetector(reader outbound.DirectoryReader, logger outbound.Logger) *PollingDetector {
	return &PollingDetector{
		reader: reader,
		settle: NewSettleChecker(reader, logger),
		logger: logger,
	}
}

func (d *PollingDetector) Strategy() model.Strategy {
	return model.StrategyPolling
}

func (d *PollingDetector) Detect(ctx context.Context, dir string, opts model.DetectionOptions) (*model.DetectionResult, error) {
	opts = opts.Normalize()
	if err := validateDirectory(d.reader, dir); err != nil {
		return nil, err
	}

	filter := NewCandidateFilter(opts)
	result := newAttempt(model.StrategyPolling, dir)

	baseline, err := captureBaseline(d.reader, dir, filter)
	if err != nil {
		return nil, err
	}
	if d.ready != nil {
		d.ready <- struct{}{}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	d.logger.Info("Polling for new file",
		"attempt", result.AttemptID,
		"dir", dir,
		"baseline", len(baseline),
		"timeout", opts.Timeout,
		"pollInterval", opts.PollInterval,
		"settleTime", opts.SettleTime)

	for {
		if ctx.Err() != nil {
			return d.giveUp(result, ctx), nil
		}

		current, err := scanCandidates(d.reader, dir, filter)
		if err != nil {
			return nil, fmt.Errorf("%w: rescanning %s: %w", model.ErrConfiguration, dir, err)
		}

		for _, candidate := range newCandidates(current, baseline) {
			d.logger.Debug("Checking candidate", "attempt", result.AttemptID, "path", candidate.Path)

			entry, stable := d.settle.Check(ctx, candidate.Path, opts.SettleTime)
			if stable {
				finishFound(result, entry)
				d.logger.Info("Stable file found",
					"attempt", result.AttemptID,
					"path", result.Path,
					"size", result.Size,
					"elapsed", result.Elapsed())
				return result, nil
			}
			if ctx.Err() != nil {
				return d.giveUp(result, ctx), nil
			}
		}

		select {
		case <-ctx.Done():
			return d.giveUp(result, ctx), nil
		case <-time.After(opts.PollInterval):
		}
	}
}

func (d *PollingDetector) giveUp(result *model.DetectionResult, ctx context.Context) *model.DetectionResult {
	finishWithout(result, ctx)
	d.logger.Info("No stable file arrived",
		"attempt", result.AttemptID,
		"outcome", result.Outcome,
		"elapsed", result.Elapsed())
	return result
}

// scanCandidates lists the candidates currently in dir
func scanCandidates(reader outbound.DirectoryReader, dir string, filter CandidateFilter) ([]model.DirectoryEntry, error) {
	entries, err := reader.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.Accepts(entry) {
			candidates = append(candidates, entry)
		}
	}
	return candidates, nil
}

// captureBaseline records the candidate paths present before an attempt starts.
// Neither detector ever reports a path from this set.
func captureBaseline(reader outbound.DirectoryReader, dir string, filter CandidateFilter) (map[string]struct{}, error) {
	initial, err := scanCandidates(reader, dir, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", model.ErrConfiguration, dir, err)
	}
	baseline := make(map[string]struct{}, len(initial))
	for _, entry := range initial {
		baseline[entry.Path] = struct{}{}
	}
	return baseline, nil
}

// newCandidates returns current minus baseline, most recently modified first.
// Equal modification times are ordered lexically by path.
func newCandidates(current []model.DirectoryEntry, baseline map[string]struct{}) []model.DirectoryEntry {
	fresh := make([]model.DirectoryEntry, 0)
	for _, entry := range current {
		if _, seen := baseline[entry.Path]; !seen {
			fresh = append(fresh, entry)
		}
	}

	sort.Slice(fresh, func(i, j int) bool {
		if !fresh[i].ModTime.Equal(fresh[j].ModTime) {
			return fresh[i].ModTime.After(fresh[j].ModTime)
		}
		return fresh[i].Path < fresh[j].Path
	})
	return fresh
}
