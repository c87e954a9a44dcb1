package loadgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
)

// ServiceStats is the subset of GET /stats the run inspects
type ServiceStats struct {
	Started         bool `json:"started"`
	QueueLength     int  `json:"queueLength"`
	TotalProfiles   int  `json:"totalProfiles"`
	LeaderboardSize int  `json:"leaderboardSize"`
	Clusters        int  `json:"clusters"`
	DedupeEntries   int  `json:"dedupeEntries"`
}

func fetchStats(ctx context.Context, client *HTTPClient) (ServiceStats, error) {
	var s ServiceStats
	if err := client.GetJSON(ctx, "/stats", &s); err != nil {
		return ServiceStats{}, fmt.Errorf("fetch stats: %w", err)
	}
	return s, nil
}

// waitForDrain polls /stats until the result queue is empty.
func waitForDrain(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "waiting for results to be processed")

	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for {
		s, err := fetchStats(ctx, client)
		if err != nil {
			return err
		}
		if s.QueueLength == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("queue still holds %d results: %w", s.QueueLength, ctx.Err())
		case <-ticker.C:
		}
	}
}

// rebuildClusters triggers a synchronous cluster rebuild.
func rebuildClusters(ctx context.Context, client *HTTPClient, stats *Stats) error {
	var report ClusterReport
	if _, err := client.PostJSON(ctx, "/clusters/rebuild", struct{}{}, &report, http.StatusOK); err != nil {
		return fmt.Errorf("rebuild clusters: %w", err)
	}
	stats.ClustersBuilt = report.Clusters
	logger.Get().Info(ctx, "clusters rebuilt",
		logger.Int("profiles", report.Profiles),
		logger.Int("clusters", report.Clusters),
		logger.Int("iterations", report.Iterations),
		logger.Bool("skipped", report.Skipped))
	return nil
}

// queryMatches asks for candidates for up to matchSampleSize players.
func queryMatches(ctx context.Context, config *Config, client *HTTPClient, profiles []model.PlayerProfile, stats *Stats) error {
	sample := profiles
	if len(sample) > matchSampleSize {
		sample = sample[:matchSampleSize]
	}
	logger.Get().Info(ctx, "querying matches", logger.Int("players", len(sample)))

	var queries, candidates int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for _, p := range sample {
		g.Go(func() error {
			req := model.MatchRequest{PlayerID: p.ID, RegionPreference: p.Region}
			var resp FindResponse
			if _, err := client.PostJSON(gctx, "/matches/find", req, &resp, http.StatusOK); err != nil {
				return fmt.Errorf("find matches for %s: %w", p.ID, err)
			}
			atomic.AddInt64(&queries, 1)
			atomic.AddInt64(&candidates, int64(len(resp.Candidates)))
			if config.Verbose && len(resp.Candidates) > 0 {
				best := resp.Candidates[0]
				logger.Get().Debug(gctx, "best candidate",
					logger.String("player_id", p.ID),
					logger.String("candidate", best.PlayerID),
					logger.Float64("score", best.Score))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	stats.MatchQueries = int(queries)
	stats.CandidatesFound = int(candidates)
	logger.Get().Info(ctx, "match queries completed",
		logger.Int("queries", stats.MatchQueries),
		logger.Int("candidates", stats.CandidatesFound))
	return nil
}

// analyzeFraud submits the streams in batches and counts flagged analyses.
func analyzeFraud(ctx context.Context, client *HTTPClient, streams []model.FraudRequest, stats *Stats) error {
	logger.Get().Info(ctx, "analyzing event streams", logger.Int("streams", len(streams)))

	for start := 0; start < len(streams); start += fraudBatchSize {
		end := min(start+fraudBatchSize, len(streams))
		var resp FraudBatchResponse
		if _, err := client.PostJSON(ctx, "/fraud/analyze/batch", FraudBatchRequest{Requests: streams[start:end]}, &resp, http.StatusOK); err != nil {
			return fmt.Errorf("fraud batch %d-%d: %w", start, end, err)
		}
		if len(resp.Analyses) != end-start {
			return fmt.Errorf("%w: fraud batch returned %d analyses for %d requests", ErrVerification, len(resp.Analyses), end-start)
		}
		for _, a := range resp.Analyses {
			stats.FraudAnalyses++
			if a.RiskScore > 0 {
				stats.FraudFlagged++
			}
		}
	}
	logger.Get().Info(ctx, "fraud analysis completed",
		logger.Int("analyses", stats.FraudAnalyses),
		logger.Int("flagged", stats.FraudFlagged))
	return nil
}

// getLeaderboard retrieves the top N leaderboard entries.
func getLeaderboard(ctx context.Context, config *Config, client *HTTPClient, stats *Stats) ([]model.LeaderboardEntry, error) {
	logger.Get().Info(ctx, "getting leaderboard", logger.Int("limit", config.Top))

	q := url.Values{}
	q.Set("limit", fmt.Sprint(config.Top))
	var leaderboard []model.LeaderboardEntry
	if err := client.GetJSON(ctx, "/leaderboard?"+q.Encode(), &leaderboard); err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	stats.LeaderboardEntries = len(leaderboard)
	return leaderboard, nil
}
