package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/thejerf/suture/v4"

	"github.com/okian/arena/internal/adapters/http/api"
	"github.com/okian/arena/internal/adapters/http/swagger"
	app "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/config"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Supervisor restart policy.
const (
	failureThreshold = 5
	failureDecay     = 30
	failureBackoff   = 15 * time.Second
)

func main() {
	// System metrics come from the metrics loop, not the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "arena exited with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	loggerInstance := logger.Get()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Apply configured log level and format (fallback to info on invalid input)
	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		loggerInstance.Warn(ctx, "invalid log_format; keeping json", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	loggerInstance = logger.Get()

	svc := newService(cfg, loggerInstance)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	root := buildSupervisor(cfg, svc, newHTTPServer(cfg, svc), loggerInstance)
	loggerInstance.Info(ctx, "starting arena", logger.String("addr", cfg.Addr))

	// Serve blocks until ctx is cancelled or a service fails past the threshold.
	err = root.Serve(ctx)
	loggerInstance.Info(ctx, "shutting down...")
	if unstopped, _ := root.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, u := range unstopped {
			loggerInstance.Warn(ctx, "service failed to stop", logger.String("service", u.Name))
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newService builds the application service from configuration.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	opts := []app.Option{
		app.WithLogger(l),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithEngineConfig(cfg.Engine()),
		app.WithFraudConfig(cfg.Fraud()),
		app.WithRebuildInterval(cfg.RebuildInterval()),
	}
	if cfg.ClusterSeed != 0 {
		opts = append(opts, app.WithSeed(cfg.ClusterSeed))
	}
	return app.New(opts...)
}

// newHTTPServer wires the business API and docs onto one router.
func newHTTPServer(cfg *config.Config, svc *app.Service) *http.Server {
	router := api.NewServer(svc,
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow()),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins),
	).Router()
	swagger.Register(context.Background(), router)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// buildSupervisor arranges the HTTP server and background loops under one
// supervisor that logs restarts through l.
func buildSupervisor(cfg *config.Config, svc *app.Service, srv *http.Server, l logger.Logger) *suture.Supervisor {
	sl := l.Named("supervisor")
	root := suture.New("arena", suture.Spec{
		EventHook: func(e suture.Event) {
			sl.Warn(context.Background(), e.String(), logger.String("event_type", fmt.Sprint(e.Type())))
		},
		FailureThreshold: failureThreshold,
		FailureDecay:     failureDecay,
		FailureBackoff:   failureBackoff,
		Timeout:          shutdownTimeout,
	})
	root.Add(&httpService{server: srv, shutdownTimeout: shutdownTimeout})
	root.Add(app.NewRebuildLoop(svc, cfg.RebuildInterval()))
	root.Add(app.NewMetricsLoop(svc, metrics.RefreshInterval()))
	return root
}

// httpService runs an http.Server as a supervised service.
type httpService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

func (h *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		// The original context is already cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *httpService) String() string { return "http-server" }
