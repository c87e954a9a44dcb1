package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/arena/pkg/logger"
)

// Run executes the complete load run against config.BaseURL.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting arena load run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("players", config.Players),
		logger.Int("matches", config.Matches),
		logger.Int("workers", config.Workers),
		logger.Float64("rps", config.RPS),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	control := newHTTPClient(config.BaseURL, config.Timeout, 0, 1)
	paced := newHTTPClient(config.BaseURL, config.Timeout, config.RPS, config.Workers)
	gen := newGenerator(config.Seed)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, control, stats); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Register profiles
	profiles, err := gen.profiles(config.Players)
	if err != nil {
		return stats, fmt.Errorf("profile generation failed: %w", err)
	}
	if err := registerProfiles(ctx, config, control, profiles, stats); err != nil {
		return stats, fmt.Errorf("profile registration failed: %w", err)
	}

	// Step 3: Submit results concurrently
	results, dups, err := gen.results(profiles, config.Matches)
	if err != nil {
		return stats, fmt.Errorf("result generation failed: %w", err)
	}
	stats.DuplicatesPlanned = dups
	if err := submitResults(ctx, config, paced, results, stats); err != nil {
		return stats, fmt.Errorf("result submission failed: %w", err)
	}
	if err := waitForDrain(ctx, control); err != nil {
		return stats, fmt.Errorf("result processing failed: %w", err)
	}

	// Step 4: Rebuild clusters
	if err := rebuildClusters(ctx, control, stats); err != nil {
		return stats, err
	}

	// Step 5: Query matches
	if err := queryMatches(ctx, config, control, profiles, stats); err != nil {
		return stats, fmt.Errorf("match queries failed: %w", err)
	}

	// Step 6: Fraud analysis
	if err := analyzeFraud(ctx, control, gen.eventStreams(profiles, fraudStreams), stats); err != nil {
		return stats, fmt.Errorf("fraud analysis failed: %w", err)
	}

	// Step 7: Get leaderboard
	leaderboard, err := getLeaderboard(ctx, config, control, stats)
	if err != nil {
		return stats, err
	}
	after, err := fetchStats(ctx, control)
	if err != nil {
		return stats, err
	}
	stats.LeaderboardAfter = after.LeaderboardSize

	// Step 8: Verify results
	if err := verifyResults(ctx, leaderboard, stats); err != nil {
		return stats, err
	}

	// Step 9: Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "load run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running and records the
// leaderboard size before the run.
func checkServiceHealth(ctx context.Context, client *HTTPClient, stats *Stats) error {
	logger.Get().Info(ctx, "checking service health")

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if err := client.GetJSON(ctx, "/healthz", nil); err != nil {
		return err
	}
	s, err := fetchStats(ctx, client)
	if err != nil {
		return err
	}
	if !s.Started {
		return fmt.Errorf("service reports not started")
	}
	stats.LeaderboardBefore = s.LeaderboardSize

	logger.Get().Info(ctx, "service is healthy", logger.Int("leaderboardSize", s.LeaderboardSize))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, resultsPerSecond float64

	if stats.ResultsSubmitted > 0 {
		acceptRate = float64(stats.ResultsAccepted) / float64(stats.ResultsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		resultsPerSecond = float64(stats.ResultsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersRegistered", stats.PlayersRegistered),
		logger.Int("playersFailed", stats.PlayersFailed),
		logger.Int("resultsSubmitted", stats.ResultsSubmitted),
		logger.Int("resultsAccepted", stats.ResultsAccepted),
		logger.Int("resultsDuplicate", stats.ResultsDuplicate),
		logger.Int("resultsFailed", stats.ResultsFailed),
		logger.Int("clusters", stats.ClustersBuilt),
		logger.Int("matchQueries", stats.MatchQueries),
		logger.Int("candidatesFound", stats.CandidatesFound),
		logger.Int("fraudAnalyses", stats.FraudAnalyses),
		logger.Int("fraudFlagged", stats.FraudFlagged),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("resultsPerSecond", resultsPerSecond))
}
