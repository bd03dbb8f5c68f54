package model

import "time"

// DetectionStats summarizes the attempts recorded since the process started
type DetectionStats struct {
	Since       time.Time                  `json:"since"`
	Attempts    int                        `json:"attempts"`
	Outcomes    map[Outcome]int            `json:"outcomes"`
	Strategies  map[Strategy]StrategyStats `json:"strategies"`
	LastArrival *DetectionResult           `json:"lastArrival,omitempty"`
}

// StrategyStats holds the counters of one detection strategy
type StrategyStats struct {
	Attempts int `json:"attempts"`
	Found    int `json:"found"`

	// MeanTimeToStable is the average elapsed time of found attempts
	MeanTimeToStable time.Duration `json:"meanTimeToStable"`
	MaxTimeToStable  time.Duration `json:"maxTimeToStable"`
}

// HitRate is the share of attempts that found a file
func (s StrategyStats) HitRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Attempts)
}
