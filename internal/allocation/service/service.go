package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trichluc/internal/allocation/models"
	"trichluc/internal/counter"
	"trichluc/internal/events"
	"trichluc/internal/platform/metrics"
	"trichluc/internal/recordlink"
	dErrors "trichluc/pkg/domain-errors"
	"trichluc/pkg/platform/sentinel"
	"trichluc/pkg/requestcontext"
)

// AuditStore is the append-only allocation log. Append must succeed before
// Allocate returns successfully.
type AuditStore interface {
	Append(ctx context.Context, record models.AllocationRecord) error
	Query(ctx context.Context, q models.Query) ([]models.AllocationRecord, error)
}

// Registry is the slice of the ward registry the engine needs.
type Registry interface {
	IsRegistered(ctx context.Context, name string) (bool, error)
	EnsureRegistered(ctx context.Context, name string) error
}

// LinkEnqueuer schedules failed linkage callbacks for background retry.
type LinkEnqueuer interface {
	Enqueue(code string, number int64)
}

// Service is the allocation engine: it derives the scope key, runs the
// atomic increment, appends the audit entry, and fires the record-linker
// callback after the number is committed.
type Service struct {
	counters    counter.Store
	audit       AuditStore
	registry    Registry
	linker      recordlink.Linker
	retrier     LinkEnqueuer
	events      events.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	cutoverYear int
	strictWards bool
}

type Option func(*Service)

// WithStrictWards makes Allocate refuse unregistered wards instead of
// quick-adding them.
func WithStrictWards(strict bool) Option {
	return func(s *Service) { s.strictWards = strict }
}

func WithEvents(publisher events.Publisher) Option {
	return func(s *Service) { s.events = publisher }
}

func WithRetrier(retrier LinkEnqueuer) Option {
	return func(s *Service) { s.retrier = retrier }
}

func New(
	counters counter.Store,
	audit AuditStore,
	registry Registry,
	linker recordlink.Linker,
	logger *slog.Logger,
	m *metrics.Metrics,
	cutoverYear int,
	opts ...Option,
) *Service {
	s := &Service{
		counters:    counters,
		audit:       audit,
		registry:    registry,
		linker:      linker,
		events:      events.NoopPublisher{},
		logger:      logger,
		metrics:     m,
		tracer:      otel.Tracer("trichluc/allocation"),
		cutoverYear: cutoverYear,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocate issues the next excerpt number for (ward, year-bucket).
//
// Error semantics follow commit order. Anything raised before the counter
// increment commits means no state changed and the call may be retried
// whole. After the increment the number is consumed: an audit-append failure
// surfaces as CodeIssuedUnrecorded and a linkage failure as
// CodeLinkageFailure, and neither may be answered with a blind re-allocation.
func (s *Service) Allocate(ctx context.Context, req models.AllocateRequest) (*models.AllocationRecord, error) {
	ctx, span := s.tracer.Start(ctx, "allocation.Allocate")
	defer span.End()
	start := time.Now()

	req.Ward = strings.TrimSpace(req.Ward)
	req.Sheet = strings.TrimSpace(req.Sheet)
	req.Plot = strings.TrimSpace(req.Plot)
	if err := validateRequest(req); err != nil {
		s.countError(err)
		return nil, err
	}
	if req.Year == 0 {
		req.Year = requestcontext.Now(ctx).Year()
	}

	if s.strictWards {
		registered, err := s.registry.IsRegistered(ctx, req.Ward)
		if err != nil {
			s.countError(err)
			return nil, err
		}
		if !registered {
			err := dErrors.New(dErrors.CodeWardNotRegistered, "ward is not registered")
			s.countError(err)
			return nil, err
		}
	} else {
		if err := s.registry.EnsureRegistered(ctx, req.Ward); err != nil {
			s.countError(err)
			return nil, err
		}
	}

	scopeKey := counter.DeriveScopeKey(req.Ward, req.Year, s.cutoverYear)
	span.SetAttributes(attribute.String("scope_key", scopeKey))

	issued, err := s.counters.Increment(ctx, scopeKey)
	if err != nil {
		// Nothing committed: safe to retry the whole call.
		s.countError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "counter store unreachable")
	}
	span.SetAttributes(attribute.Int64("issued_number", issued))

	record := models.AllocationRecord{
		ID:               uuid.New(),
		Ward:             req.Ward,
		Year:             req.Year,
		Sheet:            req.Sheet,
		Plot:             req.Plot,
		IssuedNumber:     issued,
		IssuedAt:         requestcontext.Now(ctx),
		IssuedBy:         requestcontext.Operator(ctx),
		Station:          requestcontext.Station(ctx),
		LinkedRecordCode: req.LinkedRecordCode,
	}

	if err := s.audit.Append(ctx, record); err != nil {
		// The number is consumed but unrecorded. Surface it distinctly so
		// callers reconcile instead of re-issuing.
		s.countError(err)
		s.logger.ErrorContext(ctx, "audit append failed after increment",
			"scope_key", scopeKey,
			"issued_number", issued,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeIssuedUnrecorded,
			"number issued but audit append failed")
	}

	if s.metrics != nil {
		s.metrics.AllocationsIssued.WithLabelValues(record.Ward).Inc()
		s.metrics.AllocationDuration.Observe(time.Since(start).Seconds())
	}
	s.logger.InfoContext(ctx, "excerpt number issued",
		"ward", record.Ward,
		"year", record.Year,
		"issued_number", record.IssuedNumber,
		"issued_by", record.IssuedBy,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.events.AllocationIssued(ctx, record)

	// Post-commit, no lock held: the callback's latency or failure cannot
	// stall other allocations or invalidate the issued number.
	if record.LinkedRecordCode != "" {
		if err := s.linker.AttachIssuedNumber(ctx, record.LinkedRecordCode, issued); err != nil {
			if s.metrics != nil {
				s.metrics.LinkageFailures.Inc()
			}
			s.logger.WarnContext(ctx, "record linkage failed, scheduling retry",
				"record_code", record.LinkedRecordCode,
				"issued_number", issued,
				"error", err,
			)
			if s.retrier != nil {
				s.retrier.Enqueue(record.LinkedRecordCode, issued)
			}
		}
	}

	return &record, nil
}

// Query returns audit entries newest first. The year filter follows the same
// legacy-consolidation rule as scope-key derivation.
func (s *Service) Query(ctx context.Context, q models.Query) ([]models.AllocationRecord, error) {
	q.CutoverYear = s.cutoverYear
	records, err := s.audit.Query(ctx, q)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "query allocations")
	}
	return records, nil
}

// Prefill resolves a record code through the records system so the UI can
// fill ward, sheet, and plot before allocating.
func (s *Service) Prefill(ctx context.Context, code string) (*recordlink.RecordMeta, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "record code is required")
	}
	meta, err := s.linker.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "records system unreachable")
	}
	return meta, nil
}

func validateRequest(req models.AllocateRequest) error {
	switch {
	case req.Ward == "":
		return dErrors.New(dErrors.CodeInvalidInput, "ward is required")
	case req.Sheet == "":
		return dErrors.New(dErrors.CodeInvalidInput, "sheet is required")
	case req.Plot == "":
		return dErrors.New(dErrors.CodeInvalidInput, "plot is required")
	case req.Year < 0:
		return dErrors.New(dErrors.CodeInvalidInput, "year cannot be negative")
	}
	return nil
}

func (s *Service) countError(err error) {
	if s.metrics != nil {
		s.metrics.AllocationErrors.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
	}
}
