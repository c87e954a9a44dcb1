package api

import (
	"context"
	"net/http"

	"github.com/okian/arena/internal/domain/dedupe"
	"github.com/okian/arena/internal/domain/model"
)

// ResultDependencies defines the interface for match result ingestion.
type ResultDependencies interface {
	dedupe.Deduper
	// CheckPlayers fails with a not-found error for an unregistered player.
	CheckPlayers(ctx context.Context, ids ...string) error
	// EnqueueResult pushes a result for async rating. Returns false on backpressure.
	EnqueueResult(ctx context.Context, r model.MatchResult) bool
}

// ResultsHandler handles match result requests.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandlePostResult handles POST /matches/results requests.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	var req resultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.MatchID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if err := h.deps.CheckPlayers(r.Context(), req.PlayerA, req.PlayerB); err != nil {
		h.deps.Unrecord(r.Context(), req.MatchID)
		respondError(w, Wrap(op, err))
		return
	}

	if ok := h.deps.EnqueueResult(r.Context(), req.toModel()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.MatchID)
		respondError(w, NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
