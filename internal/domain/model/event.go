package model

import "time"

// Well-known event types consumed by the fraud scorer.
const (
	EventRewardClaim  = "reward_claim"
	EventRegionChange = "region_change"
)

// PlayerEvent is one entry of a player's chronological behavior stream.
type PlayerEvent struct {
	Timestamp time.Time `json:"ts"`
	Type      string    `json:"type"`
	Value     *float64  `json:"value,omitempty"`
}

// FraudSignal is one itemized contribution to a risk score.
type FraudSignal struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// FraudAnalysis is the explainable outcome of scoring an event stream.
type FraudAnalysis struct {
	ID         string        `json:"id,omitempty"`
	PlayerID   string        `json:"player_id,omitempty"`
	RiskScore  int           `json:"risk_score"`
	Signals    []FraudSignal `json:"signals"`
	Reasons    []string      `json:"reasons"`
	AnalyzedAt time.Time     `json:"analyzed_at,omitempty"`
}

// SignalNames lists the names of the emitted signals in order.
func (a FraudAnalysis) SignalNames() []string {
	names := make([]string, len(a.Signals))
	for i, s := range a.Signals {
		names[i] = s.Name
	}
	return names
}

// FraudRequest is one entry of a batch fraud analysis.
type FraudRequest struct {
	PlayerID string        `json:"player_id"`
	Events   []PlayerEvent `json:"events"`
}
