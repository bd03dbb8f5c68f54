package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajkula/GoArrival/domain/model"
)

func result(id string, outcome model.Outcome) *model.DetectionResult {
	return &model.DetectionResult{AttemptID: id, Outcome: outcome, Strategy: model.StrategyPolling}
}

func TestArrivalRepository_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewArrivalRepository(10)

	require.NoError(t, repo.Store(ctx, result("a1", model.OutcomeFound)))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFound, got.Outcome)

	// returned values are copies
	got.Outcome = model.OutcomeCanceled
	again, _ := repo.Get(ctx, "a1")
	assert.Equal(t, model.OutcomeFound, again.Outcome)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrArrivalNotFound)

	assert.Error(t, repo.Store(ctx, &model.DetectionResult{}))
}

func TestArrivalRepository_ListIsBoundedAndRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewArrivalRepository(3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Store(ctx, result(fmt.Sprintf("a%d", i), model.OutcomeTimedOut)))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a5", all[0].AttemptID)
	assert.Equal(t, "a3", all[2].AttemptID)

	_, err = repo.Get(ctx, "a1")
	assert.ErrorIs(t, err, model.ErrArrivalNotFound)

	two, _ := repo.List(ctx, 2)
	assert.Len(t, two, 2)
}

func TestArrivalRepository_Subscribers(t *testing.T) {
	ctx := context.Background()
	repo := NewArrivalRepository(5)

	var mu sync.Mutex
	var seen []string
	id := repo.Subscribe(func(r *model.DetectionResult) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, r.AttemptID)
	})

	require.NoError(t, repo.Store(ctx, result("a1", model.OutcomeFound)))
	repo.Unsubscribe(id)
	require.NoError(t, repo.Store(ctx, result("a2", model.OutcomeFound)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a1"}, seen)
}
