package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/arena/internal/loadgen"
	"github.com/okian/arena/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlayers    = 500
	defaultMatches    = 5000
	defaultTop        = 100
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players = flag.Int("players", defaultPlayers, "Number of profiles to register")
		matches = flag.Int("matches", defaultMatches, "Number of match results to submit")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		rps     = flag.Float64("rps", 0, "Result submission rate cap, 0 for unlimited")
		top     = flag.Int("top", defaultTop, "Number of leaderboard entries to fetch")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed    = flag.Uint64("seed", 0, "Generator seed, 0 picks one from the clock")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	if err := loadgen.SetupLogging(*verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &loadgen.Config{
		BaseURL: *baseURL,
		Players: *players,
		Matches: *matches,
		Workers: *workers,
		RPS:     *rps,
		Top:     *top,
		Timeout: *timeout,
		Seed:    *seed,
		Verbose: *verbose,
	}

	if _, err := loadgen.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "load run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
