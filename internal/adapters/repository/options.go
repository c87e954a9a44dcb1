package repository

import "math/rand"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithRand sets the source of treap node priorities.
func WithRand(r *rand.Rand) Option {
	return func(s *TreapStore) {
		if r != nil {
			s.rng = r
		}
	}
}
