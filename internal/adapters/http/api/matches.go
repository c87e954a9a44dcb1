package api

import (
	"context"
	"net/http"

	"github.com/okian/arena/internal/domain/model"
)

// MatchDependencies defines the interface for opponent search.
type MatchDependencies interface {
	FindMatches(ctx context.Context, req model.MatchRequest, maxCandidates int) ([]model.MatchCandidate, error)
}

// MatchesHandler handles matchmaking requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandleFind handles POST /matches/find requests.
func (h *MatchesHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	const op = "api.find_matches"
	var req findRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	cands, err := h.deps.FindMatches(r.Context(), req.toModel(), req.MaxCandidates)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, findResponse{PlayerID: req.PlayerID, Candidates: cands})
}
