package stats

import (
	"fmt"
	"math"

	"github.com/okian/arena/internal/domain/model"
)

// Euclidean returns the straight-line distance between two feature vectors.
func Euclidean(a, b model.FeatureVector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// EuclideanSlices is Euclidean for variable-length inputs. Vectors of
// different length are rejected with ErrLengthMismatch.
func EuclideanSlices(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
