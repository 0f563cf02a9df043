package game

import "math/rand"

// Shuffle permutes items in place using Fisher-Yates.
func Shuffle[T any](rnd *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy, leaving the input untouched. Callers that
// share a pool across selection steps rely on this.
func Shuffled[T any](rnd *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	Shuffle(rnd, out)
	return out
}
