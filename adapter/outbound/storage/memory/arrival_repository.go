package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/outbound"
)

// ArrivalRepository keeps the most recent detection results in memory.
// Nothing survives a restart.
type ArrivalRepository struct {
	capacity int

	// ring of attempt IDs, oldest first
	order   []string
	results map[string]*model.DetectionResult

	subscribers map[string]outbound.ArrivalHandler

	mu sync.RWMutex
}

func NewArrivalRepository(capacity int) outbound.ArrivalRepository {
	if capacity < 1 {
		capacity = 1
	}
	return &ArrivalRepository{
		capacity:    capacity,
		order:       make([]string, 0, capacity),
		results:     make(map[string]*model.DetectionResult),
		subscribers: make(map[string]outbound.ArrivalHandler),
	}
}

func (r *ArrivalRepository) Store(ctx context.Context, result *model.DetectionResult) error {
	if result == nil || result.AttemptID == "" {
		return fmt.Errorf("cannot store a result without attempt ID")
	}

	stored := *result

	r.mu.Lock()
	if _, exists := r.results[stored.AttemptID]; !exists {
		if len(r.order) == r.capacity {
			oldest := r.order[0]
			r.order = r.order[1:]
			delete(r.results, oldest)
		}
		r.order = append(r.order, stored.AttemptID)
	}
	r.results[stored.AttemptID] = &stored

	handlers := make([]outbound.ArrivalHandler, 0, len(r.subscribers))
	for _, handler := range r.subscribers {
		handlers = append(handlers, handler)
	}
	r.mu.Unlock()

	// Notify each subscriber in a goroutine with its own copy
	var wg conc.WaitGroup
	for _, handler := range handlers {
		handler := handler // per-iteration copy; go.mod targets go1.21 loop semantics
		wg.Go(func() {
			copied := stored
			handler(&copied)
		})
	}
	wg.Wait()

	return nil
}

func (r *ArrivalRepository) Get(ctx context.Context, attemptID string) (*model.DetectionResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[attemptID]
	if !ok {
		return nil, model.ErrArrivalNotFound
	}
	copied := *result
	return &copied, nil
}

// List returns up to limit results, most recent first. A limit <= 0 returns all.
func (r *ArrivalRepository) List(ctx context.Context, limit int) ([]*model.DetectionResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}

	results := make([]*model.DetectionResult, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(results) < limit; i-- {
		copied := *r.results[r.order[i]]
		results = append(results, &copied)
	}
	return results, nil
}

func (r *ArrivalRepository) Subscribe(handler outbound.ArrivalHandler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.subscribers[id] = handler
	return id
}

func (r *ArrivalRepository) Unsubscribe(subscriptionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscribers, subscriptionID)
}
