package inbound

import (
	"context"

	"github.com/ajkula/GoArrival/domain/model"
)

type ArrivalService interface {
	// WaitForArrival runs one detection attempt with the requested strategy and records it
	WaitForArrival(ctx context.Context, req model.DetectionRequest) (*model.DetectionResult, error)

	// FindLatest returns the most recently modified candidate already present, or nil
	FindLatest(ctx context.Context, dir string, opts model.DetectionOptions) (*model.DirectoryEntry, error)

	ListArrivals(ctx context.Context, limit int) ([]*model.DetectionResult, error)
	GetArrival(ctx context.Context, attemptID string) (*model.DetectionResult, error)

	// Subscribe streams every recorded attempt to handler until unsubscribed
	Subscribe(handler func(*model.DetectionResult)) string
	Unsubscribe(subscriptionID string)

	// ResolveDirectory applies the default directory when dir is empty
	ResolveDirectory(dir string) (string, error)
}
