package api

import (
	"context"
	"net/http"

	"github.com/okian/arena/internal/domain/model"
)

// FraudDependencies defines the interface for fraud analysis.
type FraudDependencies interface {
	AnalyzeFraud(ctx context.Context, playerID string, events []model.PlayerEvent) (model.FraudAnalysis, error)
	AnalyzeFraudBatch(ctx context.Context, reqs []model.FraudRequest) ([]model.FraudAnalysis, error)
}

// FraudHandler handles fraud analysis requests.
type FraudHandler struct {
	deps FraudDependencies
}

// NewFraudHandler creates a new fraud handler.
func NewFraudHandler(deps FraudDependencies) *FraudHandler {
	return &FraudHandler{deps: deps}
}

// HandleAnalyze handles POST /fraud/analyze requests.
func (h *FraudHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_fraud"
	var req fraudRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	analysis, err := h.deps.AnalyzeFraud(r.Context(), req.PlayerID, req.Events)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HandleAnalyzeBatch handles POST /fraud/analyze/batch requests.
func (h *FraudHandler) HandleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_fraud_batch"
	var req fraudBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	reqs := make([]model.FraudRequest, len(req.Requests))
	for i, fr := range req.Requests {
		reqs[i] = model.FraudRequest{PlayerID: fr.PlayerID, Events: fr.Events}
	}
	analyses, err := h.deps.AnalyzeFraudBatch(r.Context(), reqs)
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, fraudBatchResponse{Analyses: analyses})
}
