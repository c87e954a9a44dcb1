package service

import (
	"time"

	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/matchmaking"
	"github.com/okian/arena/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of result-applying workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending match results.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many reported match ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEngineConfig sets the matchmaking policy.
func WithEngineConfig(cfg matchmaking.Config) Option {
	return func(s *Service) {
		s.engineCfg = cfg
	}
}

// WithFraudConfig sets the fraud scoring policy.
func WithFraudConfig(cfg fraud.Config) Option {
	return func(s *Service) {
		s.fraudCfg = cfg
	}
}

// WithSeed pins the clustering random source.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = &seed
	}
}

// WithRebuildInterval sets how often RebuildLoop refits the clusters.
func WithRebuildInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.rebuildInterval = d
		}
	}
}

// WithBatchConcurrency caps parallel analyses in AnalyzeFraudBatch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}
