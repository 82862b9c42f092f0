package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trichluc/internal/transport/http/shared"
	dErrors "trichluc/pkg/domain-errors"
)

// Service defines the interface for counter read and admin operations.
type Service interface {
	Peek(ctx context.Context, ward string, year int) (int64, error)
	Overwrite(ctx context.Context, ward string, year int, value int64) error
}

// Handler handles counter endpoints.
type Handler struct {
	counters Service
	logger   *slog.Logger
}

func New(counters Service, logger *slog.Logger) *Handler {
	return &Handler{counters: counters, logger: logger}
}

// Register wires counter routes. Overwrite bypasses increment semantics and
// goes behind the admin middleware.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/counters/{ward}", h.handlePeek)
	r.With(admin).Put("/counters/{ward}", h.handleOverwrite)
}

func (h *Handler) handlePeek(w http.ResponseWriter, r *http.Request) {
	ward, year, err := parseWardYear(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	value, err := h.counters.Peek(r.Context(), ward, year)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"ward":  ward,
		"year":  year,
		"value": value,
	})
}

type overwriteRequest struct {
	Value int64 `json:"value"`
}

func (h *Handler) handleOverwrite(w http.ResponseWriter, r *http.Request) {
	ward, year, err := parseWardYear(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req overwriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.counters.Overwrite(r.Context(), ward, year, req.Value); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseWardYear(r *http.Request) (string, int, error) {
	ward, err := url.PathUnescape(chi.URLParam(r, "ward"))
	if err != nil || ward == "" {
		return "", 0, dErrors.New(dErrors.CodeBadRequest, "invalid ward name")
	}

	rawYear := r.URL.Query().Get("year")
	if rawYear == "" {
		return "", 0, dErrors.New(dErrors.CodeBadRequest, "year query parameter is required")
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil || year < 0 {
		return "", 0, dErrors.New(dErrors.CodeBadRequest, "invalid year")
	}
	return ward, year, nil
}
