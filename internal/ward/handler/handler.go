package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"trichluc/internal/transport/http/shared"
	"trichluc/internal/ward"
	dErrors "trichluc/pkg/domain-errors"
	"trichluc/pkg/requestcontext"
)

// Service defines the interface for registry operations.
type Service interface {
	List(ctx context.Context) ([]ward.Ward, error)
	Add(ctx context.Context, name string) (*ward.Ward, error)
	AddBatch(ctx context.Context, names []string) (int, error)
	Remove(ctx context.Context, name string) error
	ResetToDefault(ctx context.Context) error
}

// Handler handles ward registry endpoints.
type Handler struct {
	wards  Service
	logger *slog.Logger
}

func New(wards Service, logger *slog.Logger) *Handler {
	return &Handler{wards: wards, logger: logger}
}

// Register wires the registry routes. The reset route is destructive for
// custom wards and goes behind the admin middleware.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/wards", h.handleList)
	r.Post("/wards", h.handleAdd)
	r.Delete("/wards/{name}", h.handleRemove)
	r.With(admin).Post("/wards:reset", h.handleReset)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	wards, err := h.wards.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if wards == nil {
		wards = []ward.Ward{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"wards": wards})
}

type addRequest struct {
	Name  string   `json:"name"`
	Names []string `json:"names"`
}

// handleAdd accepts a single ward or a bulk import in one endpoint.
func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ctx := r.Context()
	if len(req.Names) > 0 {
		added, err := h.wards.AddBatch(ctx, req.Names)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusCreated, map[string]int{"added": added})
		return
	}

	created, err := h.wards.Add(ctx, req.Name)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ward name"))
		return
	}
	if err := h.wards.Remove(r.Context(), name); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.wards.ResetToDefault(ctx); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "ward registry reset",
		"request_id", requestcontext.RequestID(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}
