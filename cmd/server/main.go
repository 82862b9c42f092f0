package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	allocationhandler "trichluc/internal/allocation/handler"
	allocationservice "trichluc/internal/allocation/service"
	allocationstore "trichluc/internal/allocation/store"
	"trichluc/internal/counter"
	counterhandler "trichluc/internal/counter/handler"
	counterservice "trichluc/internal/counter/service"
	counterstore "trichluc/internal/counter/store"
	"trichluc/internal/events"
	"trichluc/internal/jwttoken"
	"trichluc/internal/platform/config"
	"trichluc/internal/platform/httpserver"
	"trichluc/internal/platform/logger"
	"trichluc/internal/platform/metrics"
	"trichluc/internal/platform/postgres"
	platformredis "trichluc/internal/platform/redis"
	"trichluc/internal/recordlink"
	httptransport "trichluc/internal/transport/http"
	wardhandler "trichluc/internal/ward/handler"
	wardservice "trichluc/internal/ward/service"
	wardstore "trichluc/internal/ward/store"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Counter backend preference: Redis (native INCR), then Postgres upsert,
	// then in-memory for development.
	var counters counter.Store
	switch {
	case redisClient != nil:
		counters = counterstore.NewRedis(redisClient)
		log.Info("counter store: redis")
	case db != nil:
		counters = counterstore.NewPostgres(db)
		log.Info("counter store: postgres")
	default:
		counters = counterstore.NewInMemory()
		log.Warn("counter store: in-memory, counters reset on restart")
	}

	var wardStore wardservice.Store
	var auditStore allocationservice.AuditStore
	if db != nil {
		wardStore = wardstore.NewPostgres(db)
		auditStore = allocationstore.NewPostgres(db)
	} else {
		wardStore = wardstore.NewInMemory()
		auditStore = allocationstore.NewInMemory()
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka unavailable", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
	}
	defer publisher.Close()

	var linker recordlink.Linker
	if cfg.RecordsBaseURL != "" {
		linker = recordlink.NewHTTP(cfg.RecordsBaseURL)
	} else {
		log.Warn("records system not configured, using in-memory linker")
		linker = recordlink.NewInMemory()
	}
	retrier := recordlink.NewRetrier(linker, log, m, cfg.LinkRetryLimit)

	wardSvc := wardservice.New(wardStore, log, m)
	counterSvc := counterservice.New(counters, log, m, publisher, cfg.CutoverYear)
	allocationSvc := allocationservice.New(
		counters, auditStore, wardSvc, linker, log, m, cfg.CutoverYear,
		allocationservice.WithStrictWards(cfg.StrictWards),
		allocationservice.WithEvents(publisher),
		allocationservice.WithRetrier(retrier),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "trichluc")

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Metrics:      m,
		JWTValidator: jwtService,
		AdminToken:   cfg.AdminToken,
		Wards:        wardhandler.New(wardSvc, log),
		Counters:     counterhandler.New(counterSvc, log),
		Allocations:  allocationhandler.New(allocationSvc, log),
		Health: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				if err := redisClient.Health(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting trichluc", "addr", cfg.Addr, "strict_wards", cfg.StrictWards, "cutover_year", cfg.CutoverYear)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := retrier.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
