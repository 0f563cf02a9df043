package game

import (
	"math/rand"

	"knowball-service/internal/domain"
)

// SelectByDifficulty picks up to target questions of the primary difficulty from
// pool, backfilling from the fallback difficulties in order when the primary
// tier runs short. The result is freshly shuffled so primary/fallback
// provenance is not recoverable from order, and may be shorter than target if
// the pool plus all fallbacks cannot fill it.
func SelectByDifficulty(rnd *rand.Rand, pool []domain.Question, target int, primary domain.Difficulty, fallbacks ...domain.Difficulty) []domain.Question {
	if target <= 0 {
		return nil
	}

	selected := filterDifficulty(pool, primary)
	for _, fb := range fallbacks {
		if len(selected) >= target {
			break
		}
		remaining := target - len(selected)
		candidates := filterDifficulty(pool, fb)
		if len(candidates) > remaining {
			candidates = candidates[:remaining]
		}
		selected = append(selected, candidates...)
	}

	selected = Shuffled(rnd, selected)
	if len(selected) > target {
		selected = selected[:target]
	}
	return selected
}

func filterDifficulty(pool []domain.Question, d domain.Difficulty) []domain.Question {
	out := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Difficulty == d {
			out = append(out, q)
		}
	}
	return out
}
