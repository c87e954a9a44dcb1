package loadgen

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
)

// registerProfiles posts every profile with config.Workers in flight.
func registerProfiles(ctx context.Context, config *Config, client *HTTPClient, profiles []model.PlayerProfile, stats *Stats) error {
	logger.Get().Info(ctx, "registering profiles", logger.Int("count", len(profiles)), logger.Int("workers", config.Workers))

	var registered, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for _, p := range profiles {
		g.Go(func() error {
			if _, err := client.PostJSON(gctx, "/profiles", p, nil, http.StatusCreated); err != nil {
				atomic.AddInt64(&failed, 1)
				if config.Verbose {
					logger.Get().Warn(gctx, "profile registration failed", logger.String("player_id", p.ID), logger.Error(err))
				}
				return nil
			}
			atomic.AddInt64(&registered, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.PlayersRegistered = int(registered)
	stats.PlayersFailed = int(failed)
	logger.Get().Info(ctx, "profile registration completed",
		logger.Int("registered", stats.PlayersRegistered),
		logger.Int("failed", stats.PlayersFailed))
	return ctx.Err()
}

// submitResults posts results concurrently, paced by the client's limiter.
func submitResults(ctx context.Context, config *Config, client *HTTPClient, results []model.MatchResult, stats *Stats) error {
	logger.Get().Info(ctx, "submitting match results",
		logger.Int("count", len(results)),
		logger.Int("workers", config.Workers),
		logger.Float64("rps", config.RPS))

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
		lastReport atomic.Int64
	)
	reportInterval := time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for _, r := range results {
		g.Go(func() error {
			switch submitSingleResult(gctx, client, r) {
			case "success":
				atomic.AddInt64(&successful, 1)
			case "duplicate":
				atomic.AddInt64(&duplicate, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
			total := atomic.AddInt64(&submitted, 1)

			now := time.Now().UnixNano()
			last := lastReport.Load()
			if config.Verbose && now-last >= int64(reportInterval) && lastReport.CompareAndSwap(last, now) {
				logger.Get().Debug(gctx, "result progress",
					logger.Int64("submitted", total),
					logger.Int("total", len(results)),
					logger.Int64("success", atomic.LoadInt64(&successful)),
					logger.Int64("duplicate", atomic.LoadInt64(&duplicate)),
					logger.Int64("failed", atomic.LoadInt64(&failed)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats.ResultsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.ResultsAccepted = int(atomic.LoadInt64(&successful))
	stats.ResultsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.ResultsFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "result submission completed",
		logger.Int("accepted", stats.ResultsAccepted),
		logger.Int("duplicate", stats.ResultsDuplicate),
		logger.Int("failed", stats.ResultsFailed))
	return ctx.Err()
}

// submitSingleResult posts one result and classifies the acknowledgement.
func submitSingleResult(ctx context.Context, client *HTTPClient, r model.MatchResult) string {
	var ack AckResponse
	status, err := client.PostJSON(ctx, "/matches/results", r, &ack, http.StatusAccepted, http.StatusOK)
	if err != nil {
		return "failed"
	}
	switch {
	case status == http.StatusAccepted:
		return "success"
	case status == http.StatusOK && ack.Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}
