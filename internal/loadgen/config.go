package loadgen

import (
	"fmt"
	"time"

	"github.com/okian/arena/internal/domain/model"
)

// Config holds configuration for a load run
type Config struct {
	BaseURL string        // Base URL of the service
	Players int           // Number of profiles to register
	Matches int           // Number of match results to submit
	Workers int           // Number of concurrent workers
	RPS     float64       // Request rate cap for result submission, 0 for unlimited
	Top     int           // Leaderboard page size to fetch
	Timeout time.Duration // HTTP request timeout
	Seed    uint64        // Generator seed, 0 picks one from the clock
	Verbose bool          // Enable verbose logging
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: url is required", ErrInvalidConfig)
	case c.Players < 2:
		return fmt.Errorf("%w: players must be at least 2, got %d", ErrInvalidConfig, c.Players)
	case c.Matches < 0:
		return fmt.Errorf("%w: matches must be non-negative, got %d", ErrInvalidConfig, c.Matches)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.RPS < 0:
		return fmt.Errorf("%w: rps must be non-negative, got %v", ErrInvalidConfig, c.RPS)
	case c.Top < 1:
		return fmt.Errorf("%w: top must be positive, got %d", ErrInvalidConfig, c.Top)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// AckResponse represents the response from result submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// FindResponse represents the response from POST /matches/find
type FindResponse struct {
	PlayerID   string                 `json:"player_id"`
	Candidates []model.MatchCandidate `json:"candidates"`
}

// ClusterReport represents the response from POST /clusters/rebuild
type ClusterReport struct {
	Profiles   int  `json:"profiles"`
	Clusters   int  `json:"clusters"`
	Iterations int  `json:"iterations"`
	Skipped    bool `json:"skipped"`
}

// FraudBatchRequest is the body of POST /fraud/analyze/batch
type FraudBatchRequest struct {
	Requests []model.FraudRequest `json:"requests"`
}

// FraudBatchResponse represents the response from POST /fraud/analyze/batch
type FraudBatchResponse struct {
	Analyses []model.FraudAnalysis `json:"analyses"`
}

// Stats holds run statistics
type Stats struct {
	PlayersRegistered  int
	PlayersFailed      int
	ResultsSubmitted   int
	ResultsAccepted    int
	ResultsDuplicate   int
	ResultsFailed      int
	DuplicatesPlanned  int
	ClustersBuilt      int
	MatchQueries       int
	CandidatesFound    int
	FraudAnalyses      int
	FraudFlagged       int
	LeaderboardBefore  int
	LeaderboardAfter   int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
