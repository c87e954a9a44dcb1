// Package repository holds the rating leaderboard, a derived index over the
// matchmaking registry.
package repository

import (
	"context"

	"github.com/okian/arena/internal/domain/model"
)

// Store provides read/write access to the leaderboard.
type Store interface {
	// Upsert sets the rating of playerID, replacing any previous value.
	Upsert(ctx context.Context, playerID string, rating float64) error
	// Remove drops playerID. Returns ErrNotFound if the player is unknown.
	Remove(ctx context.Context, playerID string) error

	// Rank returns the dense rank and rating of a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (model.LeaderboardEntry, error)

	// TopN returns the top-N entries ordered by rating desc, then id asc.
	TopN(ctx context.Context, n int) ([]model.LeaderboardEntry, error)

	// Count returns the number of players tracked in the leaderboard.
	Count(ctx context.Context) int
}
