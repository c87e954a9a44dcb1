package matchmaking

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrNotFound       = errors.New("player not found")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidOutcome = errors.New("invalid match outcome")
	ErrSamePlayer     = errors.New("player cannot play against themselves")
	ErrInvalidConfig  = errors.New("invalid engine config")
)
