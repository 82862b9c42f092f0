package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"trichluc/internal/platform/metrics"
	"trichluc/internal/ward"
	dErrors "trichluc/pkg/domain-errors"
	"trichluc/pkg/platform/sentinel"
	pstrings "trichluc/pkg/platform/strings"
	"trichluc/pkg/requestcontext"
)

// Store is the persistence contract for the registry. Implementations live
// in internal/ward/store.
type Store interface {
	List(ctx context.Context) ([]ward.Ward, error)
	Contains(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, w ward.Ward) error
	Remove(ctx context.Context, name string) error
	Replace(ctx context.Context, names []string, now time.Time) error
}

// Service orchestrates registry mutations. Removing a ward never touches
// counters or allocation history: entries stay addressable under the
// now-orphaned name.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

func (s *Service) List(ctx context.Context) ([]ward.Ward, error) {
	wards, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list wards")
	}
	return wards, nil
}

func (s *Service) Add(ctx context.Context, name string) (*ward.Ward, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ward name is required")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ward name must be 128 characters or less")
	}

	w := ward.Ward{Name: name, AddedAt: requestcontext.Now(ctx)}
	if err := s.store.Add(ctx, w); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "ward already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "add ward")
	}

	s.incrementRegistered()
	s.logger.InfoContext(ctx, "ward added",
		"ward", name,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &w, nil
}

// AddBatch imports many wards at once, skipping names that are already
// registered. Returns how many were actually added.
func (s *Service) AddBatch(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range pstrings.DedupeAndTrim(names) {
		_, err := s.Add(ctx, name)
		if err != nil {
			if dErrors.Is(err, dErrors.CodeConflict) {
				continue
			}
			return added, err
		}
		added++
	}
	return added, nil
}

func (s *Service) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "ward name is required")
	}
	if err := s.store.Remove(ctx, name); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "ward not registered")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "remove ward")
	}
	s.logger.InfoContext(ctx, "ward removed",
		"ward", name,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// ResetToDefault replaces the whole set with the built-in list. Destructive
// for custom wards; counters and history are untouched, so callers confirm
// before invoking.
func (s *Service) ResetToDefault(ctx context.Context) error {
	if err := s.store.Replace(ctx, ward.DefaultWards(), requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "reset wards")
	}
	s.logger.WarnContext(ctx, "ward registry reset to default",
		"operator", requestcontext.Operator(ctx),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// IsRegistered reports whether the ward exists. Strict-mode allocation
// refuses unknown wards instead of quick-adding them.
func (s *Service) IsRegistered(ctx context.Context, name string) (bool, error) {
	ok, err := s.store.Contains(ctx, name)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "check ward")
	}
	return ok, nil
}

// EnsureRegistered is the quick-add pre-step: registers the ward if missing,
// no-op otherwise. A concurrent add by another station is not an error.
func (s *Service) EnsureRegistered(ctx context.Context, name string) error {
	ok, err := s.IsRegistered(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := s.Add(ctx, name); err != nil && !dErrors.Is(err, dErrors.CodeConflict) {
		return err
	}
	return nil
}

func (s *Service) incrementRegistered() {
	if s.metrics != nil {
		s.metrics.WardsRegistered.Inc()
	}
}
