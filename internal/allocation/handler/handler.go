package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"trichluc/internal/allocation/models"
	"trichluc/internal/recordlink"
	"trichluc/internal/transport/http/shared"
	dErrors "trichluc/pkg/domain-errors"
	"trichluc/pkg/requestcontext"
)

// Service defines the interface for allocation operations.
type Service interface {
	Allocate(ctx context.Context, req models.AllocateRequest) (*models.AllocationRecord, error)
	Query(ctx context.Context, q models.Query) ([]models.AllocationRecord, error)
	Prefill(ctx context.Context, code string) (*recordlink.RecordMeta, error)
}

// Handler handles allocation endpoints.
type Handler struct {
	allocations Service
	logger      *slog.Logger
}

func New(allocations Service, logger *slog.Logger) *Handler {
	return &Handler{allocations: allocations, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/allocations", h.handleAllocate)
	r.Get("/allocations", h.handleQuery)
	r.Get("/records/{code}", h.handlePrefill)
}

func (h *Handler) handleAllocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid allocate request",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := validateAllocateRequest(req); err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.allocations.Allocate(ctx, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeIssuedUnrecorded) {
			// The number is consumed; tell the caller loudly so they
			// reconcile via the audit log instead of re-allocating.
			h.logger.ErrorContext(ctx, "allocation issued but unrecorded",
				"error", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := models.Query{
		Ward: r.URL.Query().Get("ward"),
		Text: r.URL.Query().Get("q"),
	}
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil || year < 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid year"))
			return
		}
		q.Year = year
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid limit"))
			return
		}
		q.Limit = limit
	}

	records, err := h.allocations.Query(r.Context(), q)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if records == nil {
		records = []models.AllocationRecord{}
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"allocations": records})
}

func (h *Handler) handlePrefill(w http.ResponseWriter, r *http.Request) {
	code, err := url.PathUnescape(chi.URLParam(r, "code"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid record code"))
		return
	}
	meta, err := h.allocations.Prefill(r.Context(), code)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, meta)
}

func validateAllocateRequest(req models.AllocateRequest) error {
	if !govalidator.StringLength(req.Ward, "1", "128") {
		return dErrors.New(dErrors.CodeInvalidInput, "ward is required")
	}
	if !govalidator.StringLength(req.Sheet, "1", "64") {
		return dErrors.New(dErrors.CodeInvalidInput, "sheet is required")
	}
	if !govalidator.StringLength(req.Plot, "1", "64") {
		return dErrors.New(dErrors.CodeInvalidInput, "plot is required")
	}
	if req.Year < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "year cannot be negative")
	}
	if len(req.LinkedRecordCode) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "record code too long")
	}
	return nil
}
