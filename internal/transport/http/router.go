package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	allocationhandler "trichluc/internal/allocation/handler"
	counterhandler "trichluc/internal/counter/handler"
	"trichluc/internal/platform/metrics"
	"trichluc/internal/platform/middleware"
	wardhandler "trichluc/internal/ward/handler"
)

// Deps carries everything the router wires together. Keeping it explicit
// makes main and tests assemble the same surface.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	JWTValidator middleware.JWTValidator
	AdminToken   string

	Wards       *wardhandler.Handler
	Counters    *counterhandler.Handler
	Allocations *allocationhandler.Handler

	// Health reports backing-store connectivity; nil checks are skipped.
	Health func() error
}

// NewRouter wires all endpoints. Operator routes require a Bearer token;
// destructive admin routes additionally require the admin token header.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Station)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	admin := middleware.RequireAdminToken(deps.AdminToken, deps.Logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(deps.JWTValidator, deps.Logger))

		deps.Wards.Register(r, admin)
		deps.Counters.Register(r, admin)
		deps.Allocations.Register(r)
	})

	return r
}
