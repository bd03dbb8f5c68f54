package inbound

import (
	"context"

	"github.com/ajkula/GoArrival/domain/model"
)

// ArrivalDetector waits for a new, size-stable file to appear in a directory.
//
// Detect returns a result with OutcomeFound and the file path, or a result with
// OutcomeTimedOut/OutcomeCanceled and a nil error. Only model.ErrConfiguration and
// model.ErrSubscription are returned as errors.
type ArrivalDetector interface {
	Strategy() model.Strategy
	Detect(ctx context.Context, dir string, opts model.DetectionOptions) (*model.DetectionResult, error)
}
