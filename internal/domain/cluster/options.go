package cluster

import "math/rand"

// Option applies a configuration option to the KMeans clusterer.
type Option func(*KMeans)

// WithRand injects the random source used for centroid seeding.
func WithRand(r *rand.Rand) Option {
	return func(m *KMeans) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithSeed seeds a private random source, making Fit reproducible.
func WithSeed(seed int64) Option {
	return func(m *KMeans) {
		m.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible clustering
	}
}

// WithMaxIterations caps the iteration budget any Fit call may use.
func WithMaxIterations(n int) Option {
	return func(m *KMeans) {
		if n > 0 {
			m.maxIterations = n
		}
	}
}
