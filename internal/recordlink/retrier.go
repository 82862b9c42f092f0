package recordlink

import (
	"context"
	"log/slog"
	"time"

	"trichluc/internal/platform/metrics"
)

type linkJob struct {
	Code    string
	Number  int64
	Attempt int
}

// Retrier consumes failed linkage callbacks from a channel and retries them.
// Issued numbers are already committed by the time a job lands here, so the
// retrier only ever re-attaches; it never re-allocates.
type Retrier struct {
	linker      Linker
	logger      *slog.Logger
	metrics     *metrics.Metrics
	inbox       chan linkJob
	maxAttempts int
	backoff     time.Duration
}

func NewRetrier(linker Linker, logger *slog.Logger, m *metrics.Metrics, maxAttempts int) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		linker:      linker,
		logger:      logger,
		metrics:     m,
		inbox:       make(chan linkJob, 256),
		maxAttempts: maxAttempts,
		backoff:     2 * time.Second,
	}
}

// Enqueue schedules a failed linkage for retry. Non-blocking: when the inbox
// is full the job is dropped and logged, the issued number stays valid and
// the linkage can be redone manually from the audit log.
func (r *Retrier) Enqueue(code string, number int64) {
	select {
	case r.inbox <- linkJob{Code: code, Number: number, Attempt: 1}:
	default:
		r.logger.Error("linkage retry inbox full, dropping job",
			"record_code", code,
			"issued_number", number,
		)
	}
}

// Run processes retry jobs until the context is cancelled.
func (r *Retrier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-r.inbox:
			r.attempt(ctx, job)
		}
	}
}

func (r *Retrier) attempt(ctx context.Context, job linkJob) {
	if r.metrics != nil {
		r.metrics.LinkageRetries.Inc()
	}
	err := r.linker.AttachIssuedNumber(ctx, job.Code, job.Number)
	if err == nil {
		r.logger.InfoContext(ctx, "linkage retry succeeded",
			"record_code", job.Code,
			"issued_number", job.Number,
			"attempt", job.Attempt,
		)
		return
	}

	if job.Attempt >= r.maxAttempts {
		r.logger.ErrorContext(ctx, "linkage retries exhausted",
			"record_code", job.Code,
			"issued_number", job.Number,
			"attempts", job.Attempt,
			"error", err,
		)
		return
	}

	job.Attempt++
	delay := time.Duration(job.Attempt) * r.backoff
	r.logger.WarnContext(ctx, "linkage retry failed, rescheduling",
		"record_code", job.Code,
		"issued_number", job.Number,
		"attempt", job.Attempt,
		"delay", delay,
		"error", err,
	)
	time.AfterFunc(delay, func() {
		select {
		case r.inbox <- job:
		default:
			r.logger.Error("linkage retry inbox full, dropping job",
				"record_code", job.Code,
				"issued_number", job.Number,
			)
		}
	})
}
