// Package rating implements the Elo pairwise rating update.
package rating

import "math"

// DefaultKFactor is the rating sensitivity used when none is configured.
const DefaultKFactor = 24.0

// eloScale is the logistic divisor of the classic Elo curve.
const eloScale = 400.0

// Updater computes new ratings after a two-player result.
type Updater interface {
	ExpectedScore(rA, rB float64) float64
	Update(rA, rB, scoreA float64) float64
}

// Elo is a stateless Elo rating updater.
type Elo struct {
	kFactor float64
}

// NewElo creates an Elo updater with DefaultKFactor unless overridden.
func NewElo(opts ...Option) *Elo {
	e := &Elo{kFactor: DefaultKFactor}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// KFactor returns the configured k-factor.
func (e *Elo) KFactor() float64 { return e.kFactor }

// ExpectedScore is the probability in (0,1) that A beats B.
func (e *Elo) ExpectedScore(rA, rB float64) float64 {
	return 1 / (1 + math.Pow(10, (rB-rA)/eloScale))
}

// Update returns A's new rating for scoreA in {0, 0.5, 1}. The opponent's
// rating is obtained by calling Update(rB, rA, 1-scoreA).
func (e *Elo) Update(rA, rB, scoreA float64) float64 {
	return math.Round(rA + e.kFactor*(scoreA-e.ExpectedScore(rA, rB)))
}

// ValidOutcome reports whether score is a loss, draw or win.
func ValidOutcome(score float64) bool {
	return score == 0 || score == 0.5 || score == 1
}
