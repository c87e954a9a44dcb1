package stats

import "errors"

// Sentinel kinds for stats errors.
var (
	ErrLengthMismatch = errors.New("vector length mismatch")
)
