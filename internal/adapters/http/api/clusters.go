package api

import (
	"context"
	"net/http"

	"github.com/okian/arena/internal/domain/matchmaking"
	"github.com/okian/arena/internal/domain/model"
)

// ClusterDependencies defines the interface for cluster maintenance.
type ClusterDependencies interface {
	RebuildClusters(ctx context.Context) (matchmaking.ClusterReport, error)
	Centroids(ctx context.Context) ([]model.FeatureVector, error)
}

// ClustersHandler handles cluster requests.
type ClustersHandler struct {
	deps ClusterDependencies
}

// NewClustersHandler creates a new clusters handler.
func NewClustersHandler(deps ClusterDependencies) *ClustersHandler {
	return &ClustersHandler{deps: deps}
}

// HandleRebuild handles POST /clusters/rebuild requests.
func (h *ClustersHandler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	const op = "api.rebuild_clusters"
	report, err := h.deps.RebuildClusters(r.Context())
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGet handles GET /clusters requests.
func (h *ClustersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_clusters"
	cents, err := h.deps.Centroids(r.Context())
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	if cents == nil {
		cents = []model.FeatureVector{}
	}
	writeJSON(w, http.StatusOK, clustersResponse{Count: len(cents), Centroids: cents})
}
