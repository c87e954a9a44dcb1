package repository

import "errors"

var (
	// ErrNotFound is returned by Rank and Remove for players without a rating.
	ErrNotFound = errors.New("player not on leaderboard")
	// ErrInvalidLimit is returned by TopN for n < 1.
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
)
