package fraud

import (
	"time"

	"github.com/okian/arena/internal/domain/model"
)

// Signal names emitted by the scorer.
const (
	SignalRapidActions   = "rapid_actions"
	SignalRewardOutliers = "reward_outliers"
	SignalWinrateSpike   = "winrate_spike"
	SignalRegionHopping  = "region_hopping"
)

// Config holds every weight and threshold of the heuristic scorer.
type Config struct {
	// MaxEvents bounds the size of one analyzed stream.
	MaxEvents int

	RapidWindow   time.Duration
	RapidMinCount int
	RapidWeight   float64
	RewardEvent   string
	OutlierZ      float64
	OutlierWeight float64
	WinrateMax    float64
	WinrateRating float64
	WinrateWeight float64
	RegionEvent   string
	RegionWeight  float64
	ScoreScale    float64
	MaxRiskScore  int
}

// DefaultConfig returns the stock scoring policy.
func DefaultConfig() Config {
	return Config{
		MaxEvents:     10000,
		RapidWindow:   500 * time.Millisecond,
		RapidMinCount: 10,
		RapidWeight:   0.25,
		RewardEvent:   model.EventRewardClaim,
		OutlierZ:      3,
		OutlierWeight: 0.35,
		WinrateMax:    0.95,
		WinrateRating: 2400,
		WinrateWeight: 0.2,
		RegionEvent:   model.EventRegionChange,
		RegionWeight:  0.2,
		ScoreScale:    20,
		MaxRiskScore:  100,
	}
}
