// Package fraud scores behavioral event streams for reward abuse.
package fraud

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/arena/internal/domain/model"
)

// Scorer produces explainable risk scores. It holds no per-call state and is
// safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer using DefaultConfig unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the active scoring policy.
func (s *Scorer) Config() Config { return s.cfg }

// Analyze scores a chronological event stream. The profile is optional;
// profile-based signals are skipped when it is nil. An empty stream yields a
// zero score.
func (s *Scorer) Analyze(ctx context.Context, events []model.PlayerEvent, p *model.PlayerProfile) (model.FraudAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return model.FraudAnalysis{}, err
	}
	if s.cfg.MaxEvents > 0 && len(events) > s.cfg.MaxEvents {
		return model.FraudAnalysis{}, fmt.Errorf("%w: %d > %d", ErrTooManyEvents, len(events), s.cfg.MaxEvents)
	}

	out := model.FraudAnalysis{
		Signals: []model.FraudSignal{},
		Reasons: []string{},
	}
	if p != nil {
		out.PlayerID = p.ID
	}
	if len(events) == 0 {
		return out, nil
	}

	var total float64
	for _, detect := range detectors {
		sig, reason, ok := detect(s.cfg, events, p)
		if !ok {
			continue
		}
		out.Signals = append(out.Signals, sig)
		out.Reasons = append(out.Reasons, reason)
		total += sig.Value * sig.Weight
	}
	out.RiskScore = s.riskScore(total)
	return out, nil
}

func (s *Scorer) riskScore(total float64) int {
	score := int(math.Round(total * s.cfg.ScoreScale))
	if score > s.cfg.MaxRiskScore {
		return s.cfg.MaxRiskScore
	}
	if score < 0 {
		return 0
	}
	return score
}
