// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"

	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/matchmaking"
)

// Config contains process configuration. Keys are flat snake_case so the
// same name works in YAML and as an ARENA_ env var.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects json or console output.
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// QueueSize bounds the in-memory match result queue.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`

	// WorkerCount sets the number of rating workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// DedupeSize sets how many match ids are remembered.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=1"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gte=1"`

	// RebuildIntervalMS is the period of the background cluster rebuild.
	RebuildIntervalMS int `koanf:"rebuild_interval_ms" validate:"gte=100"`

	// RateLimitRequests per RateLimitWindowMS per client IP; 0 disables.
	RateLimitRequests int `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindowMS int `koanf:"rate_limit_window_ms" validate:"gte=1"`

	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"min=1"`

	ClusterCount       int `koanf:"cluster_count" validate:"gte=1"`
	ClusterIterations  int `koanf:"cluster_iterations" validate:"gte=1,lte=100"`
	ClusterMinProfiles int `koanf:"cluster_min_profiles" validate:"gte=1"`
	// ClusterSeed pins clustering randomness; 0 seeds from entropy.
	ClusterSeed int64 `koanf:"cluster_seed"`

	EloKFactor float64 `koanf:"elo_k_factor" validate:"gt=0"`

	MatchDefaultTolerance     float64 `koanf:"match_default_tolerance" validate:"gt=0"`
	MatchDefaultMaxCandidates int     `koanf:"match_default_max_candidates" validate:"gte=1"`
	MatchMaxCandidatesLimit   int     `koanf:"match_max_candidates_limit" validate:"gtefield=MatchDefaultMaxCandidates"`
	MatchDistanceWeight       float64 `koanf:"match_distance_weight" validate:"gte=0"`
	MatchRatingWeight         float64 `koanf:"match_rating_weight" validate:"gte=0"`
	MatchLatencyWeight        float64 `koanf:"match_latency_weight" validate:"gte=0"`
	MatchClusterBonus         float64 `koanf:"match_cluster_bonus" validate:"gte=0"`

	FraudMaxEvents     int     `koanf:"fraud_max_events" validate:"gte=1"`
	FraudRapidWindowMS int     `koanf:"fraud_rapid_window_ms" validate:"gte=1"`
	FraudRapidMinCount int     `koanf:"fraud_rapid_min_count" validate:"gte=0"`
	FraudRapidWeight   float64 `koanf:"fraud_rapid_weight" validate:"gte=0"`
	FraudOutlierZ      float64 `koanf:"fraud_outlier_z" validate:"gt=0"`
	FraudOutlierWeight float64 `koanf:"fraud_outlier_weight" validate:"gte=0"`
	FraudWinrateMax    float64 `koanf:"fraud_winrate_max" validate:"gte=0,lte=1"`
	FraudWinrateRating float64 `koanf:"fraud_winrate_rating" validate:"gte=0"`
	FraudWinrateWeight float64 `koanf:"fraud_winrate_weight" validate:"gte=0"`
	FraudRegionWeight  float64 `koanf:"fraud_region_weight" validate:"gte=0"`
	FraudScoreScale    float64 `koanf:"fraud_score_scale" validate:"gt=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	engine := matchmaking.DefaultConfig()
	fr := fraud.DefaultConfig()
	return &Config{
		LogLevel:            "info",
		LogFormat:           "json",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 2,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		RebuildIntervalMS:   30_000,
		RateLimitRequests:   0,
		RateLimitWindowMS:   1_000,
		CORSAllowedOrigins:  []string{"*"},

		ClusterCount:       engine.ClusterCount,
		ClusterIterations:  engine.ClusterIterations,
		ClusterMinProfiles: engine.MinProfiles,
		EloKFactor:         engine.KFactor,

		MatchDefaultTolerance:     engine.DefaultTolerance,
		MatchDefaultMaxCandidates: engine.DefaultMaxCandidates,
		MatchMaxCandidatesLimit:   engine.MaxCandidatesLimit,
		MatchDistanceWeight:       engine.DistanceWeight,
		MatchRatingWeight:         engine.RatingWeight,
		MatchLatencyWeight:        engine.LatencyWeight,
		MatchClusterBonus:         engine.ClusterBonus,

		FraudMaxEvents:     fr.MaxEvents,
		FraudRapidWindowMS: int(fr.RapidWindow / time.Millisecond),
		FraudRapidMinCount: fr.RapidMinCount,
		FraudRapidWeight:   fr.RapidWeight,
		FraudOutlierZ:      fr.OutlierZ,
		FraudOutlierWeight: fr.OutlierWeight,
		FraudWinrateMax:    fr.WinrateMax,
		FraudWinrateRating: fr.WinrateRating,
		FraudWinrateWeight: fr.WinrateWeight,
		FraudRegionWeight:  fr.RegionWeight,
		FraudScoreScale:    fr.ScoreScale,
	}
}

// Engine returns the matchmaking policy described by c.
func (c *Config) Engine() matchmaking.Config {
	out := matchmaking.DefaultConfig()
	out.ClusterCount = c.ClusterCount
	out.ClusterIterations = c.ClusterIterations
	out.MinProfiles = c.ClusterMinProfiles
	out.KFactor = c.EloKFactor
	out.DefaultTolerance = c.MatchDefaultTolerance
	out.DefaultMaxCandidates = c.MatchDefaultMaxCandidates
	out.MaxCandidatesLimit = c.MatchMaxCandidatesLimit
	out.DistanceWeight = c.MatchDistanceWeight
	out.RatingWeight = c.MatchRatingWeight
	out.LatencyWeight = c.MatchLatencyWeight
	out.ClusterBonus = c.MatchClusterBonus
	return out
}

// Fraud returns the fraud scoring policy described by c.
func (c *Config) Fraud() fraud.Config {
	out := fraud.DefaultConfig()
	out.MaxEvents = c.FraudMaxEvents
	out.RapidWindow = time.Duration(c.FraudRapidWindowMS) * time.Millisecond
	out.RapidMinCount = c.FraudRapidMinCount
	out.RapidWeight = c.FraudRapidWeight
	out.OutlierZ = c.FraudOutlierZ
	out.OutlierWeight = c.FraudOutlierWeight
	out.WinrateMax = c.FraudWinrateMax
	out.WinrateRating = c.FraudWinrateRating
	out.WinrateWeight = c.FraudWinrateWeight
	out.RegionWeight = c.FraudRegionWeight
	out.ScoreScale = c.FraudScoreScale
	return out
}

// RebuildInterval returns the cluster rebuild period.
func (c *Config) RebuildInterval() time.Duration {
	return time.Duration(c.RebuildIntervalMS) * time.Millisecond
}

// RateLimitWindow returns the rate limiting window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}
