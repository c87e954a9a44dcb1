// Package cluster implements Lloyd's k-means over player feature vectors.
package cluster

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/stats"
)

// Default clustering configuration constants.
const (
	DefaultIterations    = 30
	defaultMaxIterations = 100
	noCluster            = -1
)

// KMeans partitions feature vectors into at most k groups.
// It is not safe for concurrent use; callers serialize Fit.
type KMeans struct {
	k             int
	maxIterations int
	rng           *rand.Rand

	centroids []model.FeatureVector
}

// New creates a k-means clusterer. The random source defaults to one seeded
// from the clock; tests should pin it with WithSeed or WithRand.
func New(k int, opts ...Option) (*KMeans, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	m := &KMeans{
		k:             k,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // clustering init, not security sensitive
	}
	return m, nil
}

// K returns the configured cluster count.
func (m *KMeans) K() int { return m.k }

// Fit replaces the centroid set with one refined from data over at most
// iterations rounds (DefaultIterations when iterations <= 0).
func (m *KMeans) Fit(data []model.FeatureVector, iterations int) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if iterations > m.maxIterations {
		iterations = m.maxIterations
	}

	centroids := m.seed(data)
	assign := make([]int, len(data))
	for i := range assign {
		assign[i] = noCluster
	}

	for round := 0; round < iterations; round++ {
		changed := false
		for i, v := range data {
			c := nearest(centroids, v)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		// Stable assignments mean the centroids are already the means.
		if !changed {
			break
		}
		recompute(centroids, data, assign)
	}

	m.centroids = centroids
	return nil
}

// seed picks up to k distinct input vectors uniformly without replacement.
func (m *KMeans) seed(data []model.FeatureVector) []model.FeatureVector {
	seen := make(map[model.FeatureVector]struct{}, len(data))
	distinct := make([]model.FeatureVector, 0, len(data))
	for _, v := range data {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}

	n := m.k
	if n > len(distinct) {
		n = len(distinct)
	}
	perm := m.rng.Perm(len(distinct))
	out := make([]model.FeatureVector, n)
	for i := 0; i < n; i++ {
		out[i] = distinct[perm[i]]
	}
	return out
}

// recompute moves each centroid to the mean of its members; a centroid with
// no members keeps its position.
func recompute(centroids, data []model.FeatureVector, assign []int) {
	sums := make([]model.FeatureVector, len(centroids))
	counts := make([]int, len(centroids))
	for i, v := range data {
		c := assign[i]
		counts[c]++
		for d := range v {
			sums[c][d] += v[d]
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for d := range sums[c] {
			centroids[c][d] = sums[c][d] / float64(counts[c])
		}
	}
}

// nearest returns the index of the closest centroid; ties keep the first.
func nearest(centroids []model.FeatureVector, v model.FeatureVector) int {
	best := noCluster
	bestDist := 0.0
	for i, c := range centroids {
		d := stats.Euclidean(c, v)
		if best == noCluster || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Predict returns the index of the centroid nearest to v, or -1 with
// ErrNoCentroids when the model has not been fitted.
func (m *KMeans) Predict(v model.FeatureVector) (int, error) {
	if len(m.centroids) == 0 {
		return noCluster, ErrNoCentroids
	}
	return nearest(m.centroids, v), nil
}

// Centroids returns a copy of the current centroid set.
func (m *KMeans) Centroids() []model.FeatureVector {
	out := make([]model.FeatureVector, len(m.centroids))
	copy(out, m.centroids)
	return out
}
