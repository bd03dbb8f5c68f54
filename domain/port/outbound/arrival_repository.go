package outbound

import (
	"context"

	"github.com/ajkula/GoArrival/domain/model"
)

// ArrivalHandler receives every recorded detection result
type ArrivalHandler func(*model.DetectionResult)

// defines storage operations for past detection attempts
type ArrivalRepository interface {
	// Store records a finished attempt and notifies subscribers
	Store(ctx context.Context, result *model.DetectionResult) error

	// Get fetches an attempt by its ID
	Get(ctx context.Context, attemptID string) (*model.DetectionResult, error)

	// List returns recorded attempts, most recent first
	List(ctx context.Context, limit int) ([]*model.DetectionResult, error)

	// Subscribe registers a handler and returns its subscription ID
	Subscribe(handler ArrivalHandler) string

	// Unsubscribe removes a handler
	Unsubscribe(subscriptionID string)
}
