package service

import (
	"context"
	"sync"
	"time"

	"github.com/ajkula/GoArrival/domain/model"
	"github.com/ajkula/GoArrival/domain/port/inbound"
)

// strategyCounters accumulates the totals behind model.StrategyStats
type strategyCounters struct {
	attempts     int
	found        int
	totalElapsed time.Duration
	maxElapsed   time.Duration
}

// StatsServiceImpl keeps detection counters in memory
type StatsServiceImpl struct {
	startedAt  time.Time
	outcomes   map[model.Outcome]int
	strategies map[model.Strategy]*strategyCounters
	last       *model.DetectionResult
	mu         sync.RWMutex
}

func NewStatsService() inbound.StatsService {
	return &StatsServiceImpl{
		startedAt:  time.Now(),
		outcomes:   make(map[model.Outcome]int),
		strategies: make(map[model.Strategy]*strategyCounters),
	}
}

func (s *StatsServiceImpl) RecordResult(result *model.DetectionResult) {
	if result == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outcomes[result.Outcome]++

	counters, ok := s.strategies[result.Strategy]
	if !ok {
		counters = &strategyCounters{}
		s.strategies[result.Strategy] = counters
	}
	counters.attempts++

	if result.Found() {
		elapsed := result.Elapsed()
		counters.found++
		counters.totalElapsed += elapsed
		if elapsed > counters.maxElapsed {
			counters.maxElapsed = elapsed
		}

		if s.last == nil || result.FinishedAt.After(s.last.FinishedAt) {
			copied := *result
			s.last = &copied
		}
	}
}

func (s *StatsServiceImpl) GetStats(ctx context.Context) (*model.DetectionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &model.DetectionStats{
		Since:      s.startedAt,
		Outcomes:   make(map[model.Outcome]int, len(s.outcomes)),
		Strategies: make(map[model.Strategy]model.StrategyStats, len(s.strategies)),
	}

	for outcome, count := range s.outcomes {
		stats.Outcomes[outcome] = count
		stats.Attempts += count
	}

	for strategy, c := range s.strategies {
		st := model.StrategyStats{
			Attempts:        c.attempts,
			Found:           c.found,
			MaxTimeToStable: c.maxElapsed,
		}
		if c.found > 0 {
			st.MeanTimeToStable = c.totalElapsed / time.Duration(c.found)
		}
		stats.Strategies[strategy] = st
	}

	if s.last != nil {
		copied := *s.last
		stats.LastArrival = &copied
	}

	return stats, nil
}
