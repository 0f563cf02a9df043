package memory

import (
	"context"
	"sync"

	"knowball-service/internal/domain"
)

// ScoreSink records round results and lifetime totals in memory. It applies
// the same merge policy as the postgres sink: cumulative points floored at
// zero, games-played increment, longest-streak high-water mark.
type ScoreSink struct {
	mu      sync.RWMutex
	results []domain.RoundResult
	totals  map[string]domain.PlayerTotals
}

func NewScoreSink() *ScoreSink {
	return &ScoreSink{totals: make(map[string]domain.PlayerTotals)}
}

func (s *ScoreSink) SaveResult(_ context.Context, result domain.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)

	totals := s.totals[result.UserKey]
	totals.UserKey = result.UserKey
	totals.TotalPoints += result.Score
	if totals.TotalPoints < 0 {
		totals.TotalPoints = 0
	}
	totals.GamesPlayed++
	if result.MaxStreak > totals.LongestStreak {
		totals.LongestStreak = result.MaxStreak
	}
	s.totals[result.UserKey] = totals
	return nil
}

// Results returns a copy of everything recorded so far.
func (s *ScoreSink) Results() []domain.RoundResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoundResult, len(s.results))
	copy(out, s.results)
	return out
}

// Totals returns the lifetime record for userKey.
func (s *ScoreSink) Totals(userKey string) (domain.PlayerTotals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals, ok := s.totals[userKey]
	return totals, ok
}
