package matchmaking

import (
	"math/rand"

	"github.com/okian/arena/internal/domain/rating"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConfig replaces the engine policy.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithSeed makes cluster rebuilds reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic clustering
	}
}

// WithRand injects the random source used by cluster rebuilds.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithRatingUpdater overrides the Elo updater built from Config.KFactor.
func WithRatingUpdater(u rating.Updater) Option {
	return func(e *Engine) {
		if u != nil {
			e.updater = u
		}
	}
}
