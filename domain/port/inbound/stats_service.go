package inbound

import (
	"context"

	"github.com/ajkula/GoArrival/domain/model"
)

// StatsService aggregates detection results into counters
type StatsService interface {
	// GetStats returns a snapshot of the counters
	GetStats(ctx context.Context) (*model.DetectionStats, error)

	// RecordResult accounts for one finished attempt
	RecordResult(result *model.DetectionResult)
}
