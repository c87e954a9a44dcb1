package matchmaking

import (
	"fmt"

	"github.com/okian/arena/internal/domain/rating"
)

// FeatureConfig holds the constants of feature derivation.
type FeatureConfig struct {
	RatingScale     float64
	LatencyScale    float64
	DefaultLatency  float64
	DefaultWinrate  float64
	DefaultAccuracy float64
}

// Config holds the engine's clustering and scoring policy.
type Config struct {
	ClusterCount      int
	ClusterIterations int
	// MinProfiles is the registry size below which clustering is skipped.
	MinProfiles int

	DefaultTolerance     float64
	DefaultMaxCandidates int
	MaxCandidatesLimit   int
	LatencyFloorMs       float64

	DistanceWeight float64
	RatingWeight   float64
	LatencyWeight  float64
	ClusterBonus   float64

	KFactor float64

	Features FeatureConfig
}

// DefaultFeatureConfig returns the stock feature derivation constants.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		RatingScale:     3000,
		LatencyScale:    300,
		DefaultLatency:  80,
		DefaultWinrate:  0.5,
		DefaultAccuracy: 0.5,
	}
}

// DefaultConfig returns the stock engine policy.
func DefaultConfig() Config {
	return Config{
		ClusterCount:         4,
		ClusterIterations:    25,
		MinProfiles:          4,
		DefaultTolerance:     200,
		DefaultMaxCandidates: 20,
		MaxCandidatesLimit:   100,
		LatencyFloorMs:       200,
		DistanceWeight:       0.6,
		RatingWeight:         0.25,
		LatencyWeight:        0.15,
		ClusterBonus:         0.15,
		KFactor:              rating.DefaultKFactor,
		Features:             DefaultFeatureConfig(),
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	switch {
	case c.ClusterCount < 1:
		return fmt.Errorf("%w: cluster count %d", ErrInvalidConfig, c.ClusterCount)
	case c.DefaultTolerance <= 0:
		return fmt.Errorf("%w: default tolerance %v", ErrInvalidConfig, c.DefaultTolerance)
	case c.DefaultMaxCandidates < 1 || c.MaxCandidatesLimit < c.DefaultMaxCandidates:
		return fmt.Errorf("%w: candidate limits %d/%d", ErrInvalidConfig, c.DefaultMaxCandidates, c.MaxCandidatesLimit)
	case c.LatencyFloorMs <= 0:
		return fmt.Errorf("%w: latency floor %v", ErrInvalidConfig, c.LatencyFloorMs)
	case c.Features.RatingScale <= 0 || c.Features.LatencyScale <= 0:
		return fmt.Errorf("%w: feature scales must be positive", ErrInvalidConfig)
	}
	return nil
}
