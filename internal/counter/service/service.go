package service

import (
	"context"
	"log/slog"
	"strings"

	"trichluc/internal/counter"
	"trichluc/internal/events"
	"trichluc/internal/platform/metrics"
	dErrors "trichluc/pkg/domain-errors"
	"trichluc/pkg/requestcontext"
)

// Service exposes the read and administrative sides of the counter store.
// Normal issuance never goes through here; the allocation engine calls
// Increment on the store directly.
type Service struct {
	counters    counter.Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
	events      events.Publisher
	cutoverYear int
}

func New(counters counter.Store, logger *slog.Logger, m *metrics.Metrics, publisher events.Publisher, cutoverYear int) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		counters:    counters,
		logger:      logger,
		metrics:     m,
		events:      publisher,
		cutoverYear: cutoverYear,
	}
}

// Peek returns the last issued number for (ward, year). May be stale by the
// time an increment runs; UIs display it as "next number will be N+1", never
// as the issued value.
func (s *Service) Peek(ctx context.Context, ward string, year int) (int64, error) {
	ward = strings.TrimSpace(ward)
	if ward == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "ward is required")
	}
	key := counter.DeriveScopeKey(ward, year, s.cutoverYear)
	return s.counters.Peek(ctx, key)
}

// Overwrite replaces a counter value. Administrative correction only: it is
// logged as an operational event, never as an allocation record.
func (s *Service) Overwrite(ctx context.Context, ward string, year int, value int64) error {
	ward = strings.TrimSpace(ward)
	if ward == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "ward is required")
	}
	if value < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "counter value cannot be negative")
	}

	key := counter.DeriveScopeKey(ward, year, s.cutoverYear)
	if err := s.counters.Overwrite(ctx, key, value); err != nil {
		return err
	}

	operator := requestcontext.Operator(ctx)
	if s.metrics != nil {
		s.metrics.CounterOverwrites.Inc()
	}
	s.logger.WarnContext(ctx, "counter overwritten",
		"scope_key", key,
		"value", value,
		"operator", operator,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.events.CounterOverwritten(ctx, key, value, operator)
	return nil
}
