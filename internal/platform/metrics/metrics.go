package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AllocationsIssued  *prometheus.CounterVec
	AllocationErrors   *prometheus.CounterVec
	CounterOverwrites  prometheus.Counter
	LinkageFailures    prometheus.Counter
	LinkageRetries     prometheus.Counter
	WardsRegistered    prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
	AllocationDuration prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AllocationsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trichluc_allocations_issued_total",
			Help: "Excerpt numbers issued, labelled by ward.",
		}, []string{"ward"}),
		AllocationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trichluc_allocation_errors_total",
			Help: "Failed allocation attempts, labelled by error code.",
		}, []string{"code"}),
		CounterOverwrites: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trichluc_counter_overwrites_total",
			Help: "Administrative counter overwrites.",
		}),
		LinkageFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trichluc_linkage_failures_total",
			Help: "Record linker callbacks that failed after issuance.",
		}),
		LinkageRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trichluc_linkage_retries_total",
			Help: "Background retries of failed record linkages.",
		}),
		WardsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trichluc_wards_registered_total",
			Help: "Wards added to the registry, quick-add included.",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trichluc_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		AllocationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "trichluc_allocation_duration_seconds",
			Help:    "End-to-end latency of Allocate, linker callback excluded.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
