package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// newAttempt starts the single result of one detection attempt
func newAttempt(strategy model.Strategy, dir string) *model.DetectionResult {
	return &model.DetectionResult{
		AttemptID: uuid.New().String(),
		Strategy:  strategy,
		Directory: dir,
		StartedAt: time.Now(),
	}
}

func finishFound(result *model.DetectionResult, entry model.DirectoryEntry) *model.DetectionResult {
	result.Outcome = model.OutcomeFound
	result.Path = entry.Path
	result.Size = entry.Size
	result.ModTime = entry.ModTime
	result.FinishedAt = time.Now()
	return result
}

// finishWithout closes an attempt that ended because ctx is done.
// A deadline means the timeout elapsed, anything else is an external cancel.
func finishWithout(result *model.DetectionResult, ctx context.Context) *model.DetectionResult {
	result.Outcome = model.OutcomeTimedOut
	if errors.Is(ctx.Err(), context.Canceled) {
		result.Outcome = model.OutcomeCanceled
	}
	result.FinishedAt = time.Now()
	return result
}

// validateDirectory turns any problem with dir into model.ErrConfiguration
func validateDirectory(reader outbound.DirectoryReader, dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: no directory given", model.ErrConfiguration)
	}
	if err := reader.CheckDirectory(dir); err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrConfiguration, dir, err)
	}
	return nil
}
