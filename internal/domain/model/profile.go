// Package model contains domain models passed between layers.
package model

import "time"

// FeatureDims is the number of components in a FeatureVector.
const FeatureDims = 6

// Well-known stat keys read from PlayerProfile.Stats.
const (
	StatWinrate  = "winrate"
	StatAccuracy = "accuracy"
)

// PlayStyle is the closed set of declared play styles.
type PlayStyle string

// Supported play styles.
const (
	StyleAggressive PlayStyle = "aggressive"
	StyleDefensive  PlayStyle = "defensive"
	StyleBalanced   PlayStyle = "balanced"
)

// Valid reports whether s is a known style or unset.
func (s PlayStyle) Valid() bool {
	switch s {
	case "", StyleAggressive, StyleDefensive, StyleBalanced:
		return true
	}
	return false
}

// Encode maps the style onto the feature axis: aggressive +1, defensive -1,
// balanced or unset 0.
func (s PlayStyle) Encode() float64 {
	switch s {
	case StyleAggressive:
		return 1
	case StyleDefensive:
		return -1
	default:
		return 0
	}
}

// PlayerProfile is the matchmaking view of a player.
type PlayerProfile struct {
	ID        string             `json:"id"`
	Rating    float64            `json:"rating"`
	Skill     float64            `json:"skill"`
	LatencyMs *float64           `json:"latency_ms,omitempty"`
	Region    string             `json:"region,omitempty"`
	PlayStyle PlayStyle          `json:"play_style,omitempty"`
	Stats     map[string]float64 `json:"stats,omitempty"`
}

// Clone returns a deep copy so the caller and the registry never share
// the stats map or latency pointer.
func (p PlayerProfile) Clone() PlayerProfile {
	out := p
	if p.LatencyMs != nil {
		v := *p.LatencyMs
		out.LatencyMs = &v
	}
	if p.Stats != nil {
		out.Stats = make(map[string]float64, len(p.Stats))
		for k, v := range p.Stats {
			out.Stats[k] = v
		}
	}
	return out
}

// Stat returns the named stat and whether it is present.
func (p PlayerProfile) Stat(name string) (float64, bool) {
	v, ok := p.Stats[name]
	return v, ok
}

// FeatureVector is the fixed-length numeric encoding of a profile.
type FeatureVector [FeatureDims]float64

// MatchRequest asks for opponents for PlayerID. Zero values mean "unset".
type MatchRequest struct {
	PlayerID         string  `json:"player_id"`
	MaxLatencyMs     float64 `json:"max_latency_ms,omitempty"`
	RegionPreference string  `json:"region_preference,omitempty"`
	Tolerance        float64 `json:"tolerance,omitempty"`
	TeamSize         int     `json:"team_size,omitempty"`
}

// MatchCandidate is one ranked opponent suggestion.
type MatchCandidate struct {
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason,omitempty"`
}

// Match outcomes from player A's point of view.
const (
	OutcomeLoss = 0.0
	OutcomeDraw = 0.5
	OutcomeWin  = 1.0
)

// MatchResult is a completed head-to-head match reported for rating.
type MatchResult struct {
	MatchID    string    `json:"match_id"`
	PlayerA    string    `json:"player_a"`
	PlayerB    string    `json:"player_b"`
	ResultA    float64   `json:"result_a"`
	ReportedAt time.Time `json:"reported_at"`
}

// RatingChange describes the ratings before and after one applied result.
type RatingChange struct {
	PlayerA    string  `json:"player_a"`
	PlayerB    string  `json:"player_b"`
	OldRatingA float64 `json:"old_rating_a"`
	NewRatingA float64 `json:"new_rating_a"`
	OldRatingB float64 `json:"old_rating_b"`
	NewRatingB float64 `json:"new_rating_b"`
}

// LeaderboardEntry is a row of the rating leaderboard.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Rating   float64 `json:"rating"`
}
