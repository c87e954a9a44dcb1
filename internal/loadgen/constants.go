package loadgen

import "time"

// Worker configuration constants.
const (
	// Every duplicateEvery-th submitted result reuses an earlier match id.
	duplicateEvery = 10
	// matchSampleSize bounds the number of players queried in the match step.
	matchSampleSize = 20
	// fraudBatchSize is the number of streams per batch request.
	fraudBatchSize = 50
	// fraudStreams is the number of synthetic event streams analyzed.
	fraudStreams = 100
)

// Runner configuration constants.
const (
	drainPollInterval    = 100 * time.Millisecond
	drainTimeout         = 30 * time.Second
	PercentageMultiplier = 100
)
