package service

import (
	"context"
	"time"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// SettleChecker infers that a writer has stopped appending to a file by sampling its
// size twice, settle apart. Equal sizes are a heuristic for completion, not a proof:
// a writer pausing for exactly the window is reported as stable.
type SettleChecker struct {
	reader outbound.DirectoryReader
	logger outbound.Logger
}

func NewSettleChecker(reader outbound.DirectoryReader, logger outbound.Logger) *SettleChecker {
	return &SettleChecker{reader: reader, logger: logger}
}

// Check returns the second observation of path and whether the size was unchanged.
// A path that cannot be stat'ed at either sample, or a context canceled during the
// wait, yields false. No error ever leaves this method.
func (s *SettleChecker) Check(ctx context.Context, path string, settle time.Duration) (model.DirectoryEntry, bool) {
	first, err := s.reader.Stat(path)
	if err != nil {
		s.logger.Debug("Candidate vanished before first sample", "path", path, "error", err)
		return model.DirectoryEntry{}, false
	}

	timer := time.NewTimer(settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return model.DirectoryEntry{}, false
	case <-timer.C:
	}

	second, err := s.reader.Stat(path)
	if err != nil {
		s.logger.Debug("Candidate vanished during settle window", "path", path, "error", err)
		return model.DirectoryEntry{}, false
	}

	if first.Size != second.Size {
		s.logger.Debug("Candidate still growing", "path", path, "size1", first.Size, "size2", second.Size)
		return second, false
	}

	return second, true
}
