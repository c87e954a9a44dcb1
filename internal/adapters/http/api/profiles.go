package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/arena/internal/domain/model"
)

// ProfileDependencies defines the interface for profile operations.
type ProfileDependencies interface {
	RegisterProfile(ctx context.Context, p model.PlayerProfile) error
	Profile(ctx context.Context, id string) (model.PlayerProfile, error)
	RemoveProfile(ctx context.Context, id string) error
}

// ProfilesHandler handles profile requests.
type ProfilesHandler struct {
	deps ProfileDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps ProfileDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

// HandleRegister handles POST /profiles requests.
func (h *ProfilesHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_profile"
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p := req.toModel()
	if err := h.deps.RegisterProfile(r.Context(), p); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /profiles/{id} requests.
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_profile"
	p, err := h.deps.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /profiles/{id} requests.
func (h *ProfilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_profile"
	if err := h.deps.RemoveProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
