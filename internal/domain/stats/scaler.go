// Package stats holds the numeric primitives shared by clustering, fraud
// scoring and matchmaking.
package stats

import "math"

// MinStd floors the standard deviation so Transform never divides by zero.
const MinStd = 1e-8

// Scaler is a z-score normalizer. The zero value is the identity scaler.
// A Scaler is not safe for concurrent use.
type Scaler struct {
	mean   float64
	std    float64
	fitted bool
}

// NewScaler returns an identity scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Fit computes the mean and population standard deviation of values.
// An empty sample leaves the previous fit in place.
func (s *Scaler) Fit(values []float64) {
	if len(values) == 0 {
		return
	}
	n := float64(len(values))

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	s.mean = mean
	s.std = math.Max(math.Sqrt(sq/n), MinStd)
	s.fitted = true
}

// Transform returns the z-score of x under the most recent fit.
func (s *Scaler) Transform(x float64) float64 {
	if !s.fitted {
		return x
	}
	return (x - s.mean) / s.std
}

// Mean returns the fitted mean, 0 before any fit.
func (s *Scaler) Mean() float64 { return s.mean }

// Std returns the fitted standard deviation, 1 before any fit.
func (s *Scaler) Std() float64 {
	if !s.fitted {
		return 1
	}
	return s.std
}
