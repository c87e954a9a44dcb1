// Package matchmaking owns the player registry and ranks opponents by
// feature distance, rating proximity, latency and cluster agreement.
package matchmaking

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/okian/arena/internal/domain/cluster"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/rating"
	"github.com/okian/arena/internal/domain/stats"
)

// ClusterReport summarizes one RebuildClusters call.
type ClusterReport struct {
	Profiles   int           `json:"profiles"`
	Clusters   int           `json:"clusters"`
	Iterations int           `json:"iterations"`
	Skipped    bool          `json:"skipped"`
	Duration   time.Duration `json:"duration"`
}

// Engine is the matchmaking registry. All methods are safe for concurrent
// use; reads share a read lock and writes are exclusive.
type Engine struct {
	cfg     Config
	updater rating.Updater

	mu        sync.RWMutex
	profiles  map[string]model.PlayerProfile
	vectors   map[string]model.FeatureVector
	clusterer *cluster.KMeans

	// rebuildMu serializes rebuilds and guards rng.
	rebuildMu sync.Mutex
	rng       *rand.Rand
}

// New creates an engine with DefaultConfig unless overridden.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:      DefaultConfig(),
		profiles: make(map[string]model.PlayerProfile),
		vectors:  make(map[string]model.FeatureVector),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.updater == nil {
		e.updater = rating.NewElo(rating.WithKFactor(e.cfg.KFactor))
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // clustering init
	}
	return e, nil
}

// Config returns the active engine policy.
func (e *Engine) Config() Config { return e.cfg }

// RegisterProfile inserts or replaces p and refreshes its cached vector.
func (e *Engine) RegisterProfile(ctx context.Context, p model.PlayerProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProfile)
	}
	e.mu.Lock()
	e.storeLocked(p.Clone())
	e.mu.Unlock()
	return nil
}

func (e *Engine) storeLocked(p model.PlayerProfile) {
	e.profiles[p.ID] = p
	e.vectors[p.ID] = Features(p, e.cfg.Features)
}

// UpdateRating applies an Elo update for a match between a and b where
// resultA is a's outcome.
func (e *Engine) UpdateRating(ctx context.Context, a, b string, resultA float64) (model.RatingChange, error) {
	if err := ctx.Err(); err != nil {
		return model.RatingChange{}, err
	}
	if !rating.ValidOutcome(resultA) {
		return model.RatingChange{}, fmt.Errorf("%w: %v", ErrInvalidOutcome, resultA)
	}
	if a == b {
		return model.RatingChange{}, fmt.Errorf("%w: %s", ErrSamePlayer, a)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pa, ok := e.profiles[a]
	if !ok {
		return model.RatingChange{}, fmt.Errorf("%w: %s", ErrNotFound, a)
	}
	pb, ok := e.profiles[b]
	if !ok {
		return model.RatingChange{}, fmt.Errorf("%w: %s", ErrNotFound, b)
	}

	change := model.RatingChange{
		PlayerA:    a,
		PlayerB:    b,
		OldRatingA: pa.Rating,
		OldRatingB: pb.Rating,
		NewRatingA: e.updater.Update(pa.Rating, pb.Rating, resultA),
		NewRatingB: e.updater.Update(pb.Rating, pa.Rating, 1-resultA),
	}
	pa.Rating = change.NewRatingA
	pb.Rating = change.NewRatingB
	e.storeLocked(pa)
	e.storeLocked(pb)
	return change, nil
}

// RebuildClusters refits the centroids from every registered profile. It is
// skipped while fewer than Config.MinProfiles profiles exist, in which case
// the previous centroids are kept.
func (e *Engine) RebuildClusters(ctx context.Context) (ClusterReport, error) {
	if err := ctx.Err(); err != nil {
		return ClusterReport{}, err
	}
	start := time.Now()

	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	e.mu.Lock()
	ids := make([]string, 0, len(e.profiles))
	for id := range e.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data := make([]model.FeatureVector, len(ids))
	for i, id := range ids {
		v := Features(e.profiles[id], e.cfg.Features)
		e.vectors[id] = v
		data[i] = v
	}
	e.mu.Unlock()

	report := ClusterReport{Profiles: len(data), Iterations: e.cfg.ClusterIterations}
	if len(data) < e.cfg.MinProfiles || len(data) == 0 {
		report.Skipped = true
		report.Duration = time.Since(start)
		return report, nil
	}

	km, err := cluster.New(e.cfg.ClusterCount, cluster.WithRand(e.rng))
	if err != nil {
		return ClusterReport{}, err
	}
	if err := km.Fit(data, e.cfg.ClusterIterations); err != nil {
		return ClusterReport{}, fmt.Errorf("fit clusters: %w", err)
	}

	e.mu.Lock()
	e.clusterer = km
	e.mu.Unlock()

	report.Clusters = len(km.Centroids())
	report.Duration = time.Since(start)
	return report, nil
}

// FindMatches ranks up to maxCandidates opponents for req.PlayerID.
// maxCandidates <= 0 uses the configured default; larger values are clamped
// to Config.MaxCandidatesLimit.
func (e *Engine) FindMatches(ctx context.Context, req model.MatchRequest, maxCandidates int) ([]model.MatchCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxCandidates <= 0 {
		maxCandidates = e.cfg.DefaultMaxCandidates
	}
	if maxCandidates > e.cfg.MaxCandidatesLimit {
		maxCandidates = e.cfg.MaxCandidatesLimit
	}
	tolerance := req.Tolerance
	if tolerance <= 0 {
		tolerance = e.cfg.DefaultTolerance
	}
	latencyBase := math.Max(req.MaxLatencyMs, e.cfg.LatencyFloorMs)

	e.mu.RLock()
	defer e.mu.RUnlock()

	self, ok := e.profiles[req.PlayerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.PlayerID)
	}
	selfVec := e.vectors[req.PlayerID]
	selfCluster := e.predictLocked(selfVec)

	out := make([]model.MatchCandidate, 0)
	for id, p := range e.profiles {
		if id == req.PlayerID {
			continue
		}
		if req.RegionPreference != "" && p.Region != req.RegionPreference {
			continue
		}
		latency := effectiveLatency(p, e.cfg.Features)
		if req.MaxLatencyMs > 0 && latency > req.MaxLatencyMs {
			continue
		}
		diff := math.Abs(p.Rating - self.Rating)
		if diff > tolerance {
			continue
		}

		vec := e.vectors[id]
		dist := stats.Euclidean(selfVec, vec)
		score := e.cfg.DistanceWeight*(1/(1+dist)) +
			e.cfg.RatingWeight*(1-diff/tolerance) +
			e.cfg.LatencyWeight*(1-math.Min(latency/latencyBase, 1))

		same := selfCluster >= 0 && e.predictLocked(vec) == selfCluster
		if same {
			score += e.cfg.ClusterBonus
		}
		out = append(out, model.MatchCandidate{
			PlayerID: id,
			Score:    score,
			Reason:   reason(diff, dist, same),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out, nil
}

func reason(diff, dist float64, sameCluster bool) string {
	r := fmt.Sprintf("rating diff %.0f, distance %.3f", diff, dist)
	if sameCluster {
		r += ", same cluster"
	}
	return r
}

// predictLocked returns the cluster of v, or -1 before the first rebuild.
func (e *Engine) predictLocked(v model.FeatureVector) int {
	if e.clusterer == nil {
		return -1
	}
	idx, err := e.clusterer.Predict(v)
	if err != nil {
		return -1
	}
	return idx
}

// Profile returns a copy of the registered profile.
func (e *Engine) Profile(id string) (model.PlayerProfile, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.profiles[id]
	if !ok {
		return model.PlayerProfile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

// RemoveProfile deletes a profile and its cached vector.
func (e *Engine) RemoveProfile(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.profiles[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(e.profiles, id)
	delete(e.vectors, id)
	return nil
}

// Vector returns the cached feature vector of id.
func (e *Engine) Vector(id string) (model.FeatureVector, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vectors[id]
	if !ok {
		return model.FeatureVector{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

// Cluster returns the cluster index of id, or -1 before the first rebuild.
func (e *Engine) Cluster(id string) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vectors[id]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.predictLocked(v), nil
}

// Centroids returns a snapshot of the current centroids.
func (e *Engine) Centroids() []model.FeatureVector {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.clusterer == nil {
		return []model.FeatureVector{}
	}
	return e.clusterer.Centroids()
}

// Len returns the number of registered profiles.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.profiles)
}
