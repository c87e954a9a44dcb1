package loadgen

import (
	"fmt"
	"os"

	"github.com/okian/arena/pkg/logger"
)

// SetupLogging initializes console logging, at debug level when verbose.
func SetupLogging(verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetFormat("console"); err != nil {
		return fmt.Errorf("failed to set log format: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the load generator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Arena Load Generator
====================

Drives a running arena service through registration, result ingestion,
clustering, matchmaking, fraud analysis and leaderboard reads, then verifies
the leaderboard is consistent with what was sent.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Number of profiles to register (default 500)
  -matches int
        Number of match results to submit (default 5000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -rps float
        Result submission rate cap, 0 for unlimited (default 0)
  -top int
        Number of leaderboard entries to fetch (default 100)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Generator seed, 0 picks one from the clock (default 0)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run with default settings
  go run ./cmd/loadgen

  # Heavier run paced at 2000 results per second
  go run ./cmd/loadgen -players 5000 -matches 100000 -rps 2000 -workers 32
`)
}
