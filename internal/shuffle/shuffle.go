// Package shuffle randomizes sequence order so that question selection is
// never deterministic.
package shuffle

import "math/rand/v2"

// Source is the subset of *rand.Rand used by Shuffle.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Global draws from the runtime's auto-seeded generator and is safe for
// concurrent use.
var Global Source = globalSource{}

// Shuffle returns a uniformly random permutation of a copy of items.
// The input slice is never modified.
func Shuffle[T any](items []T, src Source) []T {
	if src == nil {
		src = Global
	}
	out := make([]T, len(items))
	copy(out, items)

	// Fisher-Yates.
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
