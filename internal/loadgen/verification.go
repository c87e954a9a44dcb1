package loadgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
)

// verifyResults checks the leaderboard against what the run registered and
// submitted. All failed checks are reported together.
func verifyResults(ctx context.Context, leaderboard []model.LeaderboardEntry, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	var errs []error
	if grew := stats.LeaderboardAfter - stats.LeaderboardBefore; grew != stats.PlayersRegistered {
		errs = append(errs, fmt.Errorf("leaderboard grew by %d, registered %d players", grew, stats.PlayersRegistered))
	}
	if stats.ResultsFailed == 0 && stats.ResultsDuplicate != stats.DuplicatesPlanned {
		errs = append(errs, fmt.Errorf("%d duplicates acknowledged, %d submitted", stats.ResultsDuplicate, stats.DuplicatesPlanned))
	}
	if err := verifyLeaderboardOrder(leaderboard); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrVerification, err)
	}

	displayTopPlayers(ctx, leaderboard)
	logger.Get().Info(ctx, "result verification completed")
	return nil
}

// verifyLeaderboardOrder checks ranks are non-decreasing and ratings non-increasing.
func verifyLeaderboardOrder(leaderboard []model.LeaderboardEntry) error {
	for i := 1; i < len(leaderboard); i++ {
		prev, cur := leaderboard[i-1], leaderboard[i]
		if cur.Rank < prev.Rank {
			return fmt.Errorf("leaderboard rank decreases at entry %d: %d after %d", i, cur.Rank, prev.Rank)
		}
		if cur.Rating > prev.Rating {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher rating than entry %d", i, i-1)
		}
	}
	return nil
}

// displayTopPlayers logs the head of the leaderboard.
func displayTopPlayers(ctx context.Context, leaderboard []model.LeaderboardEntry) {
	topN := min(10, len(leaderboard))
	for _, e := range leaderboard[:topN] {
		logger.Get().Info(ctx, "leaderboard entry",
			logger.Int("rank", e.Rank),
			logger.String("player_id", e.PlayerID),
			logger.Float64("rating", e.Rating))
	}
}
