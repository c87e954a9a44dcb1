// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/fraud"
	"github.com/okian/arena/internal/domain/matchmaking"
)

// Default server settings.
const (
	defaultMaxLeaderboardLimit = 1000
	defaultRateLimitWindow     = time.Second
	maxBodyBytes               = 8 << 20
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	ProfileDependencies
	ResultDependencies
	MatchDependencies
	FraudDependencies
	ClusterDependencies
	LeaderboardDependencies
	RankDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	profilesHandler    *ProfilesHandler
	resultsHandler     *ResultsHandler
	matchesHandler     *MatchesHandler
	fraudHandler       *FraudHandler
	clustersHandler    *ClustersHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler

	maxLeaderboardLimit int
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	corsOrigins         []string
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		maxLeaderboardLimit: defaultMaxLeaderboardLimit,
		rateLimitWindow:     defaultRateLimitWindow,
		corsOrigins:         []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.profilesHandler = NewProfilesHandler(deps)
	s.resultsHandler = NewResultsHandler(deps)
	s.matchesHandler = NewMatchesHandler(deps)
	s.fraudHandler = NewFraudHandler(deps)
	s.clustersHandler = NewClustersHandler(deps)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLeaderboardLimit)
	s.rankHandler = NewRankHandler(deps)
	return s
}

// Router builds the chi router with every business route attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Group(func(r chi.Router) {
		if s.rateLimitRequests > 0 {
			r.Use(httprate.Limit(s.rateLimitRequests, s.rateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate_limited", ErrBackpressure)
				}),
			))
		}

		r.Post("/profiles", MetricsMiddleware(s.profilesHandler.HandleRegister, "profiles"))
		r.Get("/profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleGet, "profiles"))
		r.Delete("/profiles/{id}", MetricsMiddleware(s.profilesHandler.HandleDelete, "profiles"))

		r.Post("/matches/results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "match_results"))
		r.Post("/matches/find", MetricsMiddleware(s.matchesHandler.HandleFind, "match_find"))

		r.Post("/fraud/analyze", MetricsMiddleware(s.fraudHandler.HandleAnalyze, "fraud_analyze"))
		r.Post("/fraud/analyze/batch", MetricsMiddleware(s.fraudHandler.HandleAnalyzeBatch, "fraud_analyze_batch"))

		r.Post("/clusters/rebuild", MetricsMiddleware(s.clustersHandler.HandleRebuild, "clusters_rebuild"))
		r.Get("/clusters", MetricsMiddleware(s.clustersHandler.HandleGet, "clusters"))

		r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
		r.Get("/rank/{id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	})
	return r
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// respondError maps err onto a status code and writes it.
func respondError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, matchmaking.ErrInvalidProfile),
		errors.Is(err, matchmaking.ErrInvalidOutcome),
		errors.Is(err, matchmaking.ErrSamePlayer),
		errors.Is(err, fraud.ErrTooManyEvents),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, matchmaking.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
