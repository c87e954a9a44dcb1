// Package service provides the application service that wires the
// matchmaking core to the leaderboard, result queue and worker pool, and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/okian/arena/internal/adapters/mq/queue"
	workerpool "github.com/okian/arena/internal/adapters/mq/worker"
	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/dedupe"
	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/matchmaking"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize        = 10000
	defaultDedupeSize       = 50000
	defaultRebuildInterval  = 30 * time.Second
	defaultBatchConcurrency = 8
)

// Service implements the API dependencies for the matchmaking platform.
type Service struct {
	mu sync.RWMutex
	// writeMu serializes engine writes with their leaderboard mirror.
	writeMu sync.Mutex

	// Core components
	engine      *matchmaking.Engine
	scorer      *fraud.Scorer
	leaderboard repository.Store
	deduper     dedupe.Deduper
	resultQueue *queue.InMemoryQueue[model.MatchResult]
	workerPool  *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	engineCfg        matchmaking.Config
	fraudCfg         fraud.Config
	seed             *int64
	rebuildInterval  time.Duration
	batchConcurrency int

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU() * 2,
		queueSize:        defaultQueueSize,
		dedupeSize:       defaultDedupeSize,
		engineCfg:        matchmaking.DefaultConfig(),
		fraudCfg:         fraud.DefaultConfig(),
		rebuildInterval:  defaultRebuildInterval,
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting matchmaking service...")

	engineOpts := []matchmaking.Option{matchmaking.WithConfig(s.engineCfg)}
	storeOpts := []repository.Option{}
	if s.seed != nil {
		engineOpts = append(engineOpts, matchmaking.WithSeed(*s.seed))
		storeOpts = append(storeOpts, repository.WithRand(rand.New(rand.NewSource(*s.seed)))) //nolint:gosec // treap priorities
	}
	engine, err := matchmaking.New(engineOpts...)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	s.engine = engine
	s.scorer = fraud.NewScorer(fraud.WithConfig(s.fraudCfg))
	s.leaderboard = repository.NewTreapStore(storeOpts...)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.resultQueue = queue.NewInMemoryQueue[model.MatchResult](queue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.resultQueue, s)

	// Workers outlive the start-up context and stop with Stop.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "matchmaking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("cluster_count", s.engineCfg.ClusterCount),
	)
	return nil
}

// Stop drains pending results and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping matchmaking service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}

	s.started = false
	s.logger.Info(ctx, "matchmaking service stopped")
}

// ready reports ErrNotStarted until Start has built the components.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// RebuildInterval returns the configured cluster rebuild period.
func (s *Service) RebuildInterval() time.Duration { return s.rebuildInterval }

// RegisterProfile stores a profile in the engine and mirrors its rating on
// the leaderboard.
func (s *Service) RegisterProfile(ctx context.Context, p model.PlayerProfile) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.engine.RegisterProfile(ctx, p); err != nil {
		return err
	}
	if err := s.leaderboard.Upsert(ctx, p.ID, p.Rating); err != nil {
		return fmt.Errorf("leaderboard upsert: %w", err)
	}
	metrics.RecordProfileRegistered()
	metrics.UpdateProfilesTotal(s.engine.Len())
	return nil
}

// Profile returns the registered profile of id.
func (s *Service) Profile(ctx context.Context, id string) (model.PlayerProfile, error) {
	if err := s.ready(); err != nil {
		return model.PlayerProfile{}, err
	}
	return s.engine.Profile(id)
}

// RemoveProfile drops a player from the engine and the leaderboard.
func (s *Service) RemoveProfile(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.engine.RemoveProfile(id); err != nil {
		return err
	}
	if err := s.leaderboard.Remove(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("leaderboard remove: %w", err)
	}
	metrics.RecordProfileRemoved()
	metrics.UpdateProfilesTotal(s.engine.Len())
	return nil
}

// SeenAndRecord atomically checks if a match id was seen and records it if not.
// Returns true if the match was already reported.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.ready() != nil {
		return false
	}
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordResultDuplicate()
	}
	return seen
}

// Unrecord forgets a match id so the result can be reported again.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.ready() != nil {
		return
	}
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of remembered match ids.
func (s *Service) Size() int64 {
	if s.ready() != nil {
		return 0
	}
	return s.deduper.Size()
}

// CheckPlayers reports matchmaking.ErrNotFound for the first id that is not
// registered.
func (s *Service) CheckPlayers(ctx context.Context, ids ...string) error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.engine.Profile(id); err != nil {
			return err
		}
	}
	return nil
}

// EnqueueResult submits a match result for asynchronous rating. Returns false
// on backpressure.
func (s *Service) EnqueueResult(ctx context.Context, r model.MatchResult) bool {
	if s.ready() != nil {
		return false
	}
	if r.ReportedAt.IsZero() {
		r.ReportedAt = time.Now().UTC()
	}
	s.logger.Debug(ctx, "enqueueing match result",
		logger.String("match_id", r.MatchID),
		logger.String("player_a", r.PlayerA),
		logger.String("player_b", r.PlayerB),
		logger.Float64("result_a", r.ResultA),
	)
	return s.resultQueue.Enqueue(ctx, r)
}

// ApplyResult updates both players' ratings and mirrors them on the
// leaderboard. Workers call it for every dequeued result. A result the
// engine rejects leaves no rating change, so its match id is forgotten and
// can be reported again.
func (s *Service) ApplyResult(ctx context.Context, r model.MatchResult) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	change, err := s.engine.UpdateRating(ctx, r.PlayerA, r.PlayerB, r.ResultA)
	if err != nil {
		if r.MatchID != "" {
			s.deduper.Unrecord(ctx, r.MatchID)
		}
		return err
	}
	if err := s.leaderboard.Upsert(ctx, change.PlayerA, change.NewRatingA); err != nil {
		return fmt.Errorf("leaderboard upsert %s: %w", change.PlayerA, err)
	}
	if err := s.leaderboard.Upsert(ctx, change.PlayerB, change.NewRatingB); err != nil {
		return fmt.Errorf("leaderboard upsert %s: %w", change.PlayerB, err)
	}
	metrics.RecordRatingUpdate(change.NewRatingA - change.OldRatingA)
	s.logger.Debug(ctx, "applied match result",
		logger.String("match_id", r.MatchID),
		logger.Float64("rating_a", change.NewRatingA),
		logger.Float64("rating_b", change.NewRatingB),
	)
	return nil
}

// FindMatches ranks opponents for req.PlayerID.
func (s *Service) FindMatches(ctx context.Context, req model.MatchRequest, maxCandidates int) ([]model.MatchCandidate, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start := time.Now()
	cands, err := s.engine.FindMatches(ctx, req, maxCandidates)
	if err != nil {
		return nil, err
	}
	metrics.RecordMatchQuery(float64(time.Since(start).Milliseconds()), len(cands))
	return cands, nil
}

// AnalyzeFraud scores a player's event stream. The registered profile is
// attached when the player is known.
func (s *Service) AnalyzeFraud(ctx context.Context, playerID string, events []model.PlayerEvent) (model.FraudAnalysis, error) {
	if err := s.ready(); err != nil {
		return model.FraudAnalysis{}, err
	}

	var profile *model.PlayerProfile
	if playerID != "" {
		if p, err := s.engine.Profile(playerID); err == nil {
			profile = &p
		}
	}

	analysis, err := s.scorer.Analyze(ctx, events, profile)
	if err != nil {
		return model.FraudAnalysis{}, err
	}
	id, err := gonanoid.New()
	if err != nil {
		return model.FraudAnalysis{}, fmt.Errorf("analysis id: %w", err)
	}
	analysis.ID = id
	analysis.PlayerID = playerID
	analysis.AnalyzedAt = time.Now().UTC()

	metrics.RecordFraudAnalysis(analysis.RiskScore, analysis.SignalNames())
	if analysis.RiskScore > 0 {
		s.logger.Info(ctx, "fraud signals detected",
			logger.String("analysis_id", analysis.ID),
			logger.String("player_id", playerID),
			logger.Int("risk_score", analysis.RiskScore),
			logger.Any("signals", analysis.SignalNames()),
		)
	}
	return analysis, nil
}

// AnalyzeFraudBatch scores independent streams in parallel. Results keep the
// order of reqs; the first failure cancels the rest.
func (s *Service) AnalyzeFraudBatch(ctx context.Context, reqs []model.FraudRequest) ([]model.FraudAnalysis, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	out := make([]model.FraudAnalysis, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			a, err := s.AnalyzeFraud(gctx, req.PlayerID, req.Events)
			if err != nil {
				return fmt.Errorf("analyze %d (%s): %w", i, req.PlayerID, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RebuildClusters refits the matchmaking clusters.
func (s *Service) RebuildClusters(ctx context.Context) (matchmaking.ClusterReport, error) {
	if err := s.ready(); err != nil {
		return matchmaking.ClusterReport{}, err
	}
	report, err := s.engine.RebuildClusters(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("engine", "rebuild_failed")
		return matchmaking.ClusterReport{}, err
	}
	if report.Skipped {
		metrics.RecordClusterRebuildSkipped()
	} else {
		metrics.RecordClusterRebuild(float64(report.Duration.Milliseconds()), report.Clusters)
	}
	return report, nil
}

// Centroids returns the current cluster centroids.
func (s *Service) Centroids(ctx context.Context) ([]model.FeatureVector, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.engine.Centroids(), nil
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.leaderboard.TopN(ctx, n)
}

// Rank returns the leaderboard entry of a player.
func (s *Service) Rank(ctx context.Context, playerID string) (model.LeaderboardEntry, error) {
	if err := s.ready(); err != nil {
		return model.LeaderboardEntry{}, err
	}
	return s.leaderboard.Rank(ctx, playerID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.resultQueue.Len(ctx)
		stats["totalProfiles"] = s.engine.Len()
		stats["leaderboardSize"] = s.leaderboard.Count(ctx)
		stats["clusters"] = len(s.engine.Centroids())
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}
