package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	// Notifier providers register themselves on import.
	_ "github.com/greenlight-hq/greenlight/internal/adapter/email"
	_ "github.com/greenlight-hq/greenlight/internal/adapter/slack"

	glhttp "github.com/greenlight-hq/greenlight/internal/adapter/http"
	glnats "github.com/greenlight-hq/greenlight/internal/adapter/nats"
	"github.com/greenlight-hq/greenlight/internal/adapter/natskv"
	glotel "github.com/greenlight-hq/greenlight/internal/adapter/otel"
	"github.com/greenlight-hq/greenlight/internal/adapter/postgres"
	"github.com/greenlight-hq/greenlight/internal/adapter/ristretto"
	"github.com/greenlight-hq/greenlight/internal/adapter/tiered"
	"github.com/greenlight-hq/greenlight/internal/adapter/ws"
	"github.com/greenlight-hq/greenlight/internal/config"
	"github.com/greenlight-hq/greenlight/internal/logger"
	"github.com/greenlight-hq/greenlight/internal/middleware"
	"github.com/greenlight-hq/greenlight/internal/port/cache"
	"github.com/greenlight-hq/greenlight/internal/port/notifier"
	"github.com/greenlight-hq/greenlight/internal/resilience"
	"github.com/greenlight-hq/greenlight/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"tick_interval", cfg.Scheduler.TickInterval,
	)

	ctx := context.Background()

	// --- Telemetry ---
	shutdownTelemetry, err := glotel.Setup(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := glotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := glnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	defer func() { _ = queue.Drain() }()
	slog.Info("nats connected")

	// --- Threshold cache (L1 in-process, L2 shared KV) ---
	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("ristretto: %w", err)
	}
	defer l1.Close()

	var thresholdCache cache.Cache = l1
	if kv, err := queue.KeyValue(ctx, cfg.Cache.L2Bucket); err != nil {
		slog.Warn("nats kv unavailable, thresholds cached in-process only", "error", err)
	} else {
		thresholdCache = tiered.New(l1, natskv.New(kv), cfg.Cache.TTL)
	}

	// --- Notifiers ---
	var notifiers []notifier.Notifier
	for name, providerCfg := range cfg.Notify.Providers {
		n, err := notifier.New(name, providerCfg)
		if err != nil {
			slog.Warn("notifier not configured", "provider", name, "error", err)
			continue
		}
		notifiers = append(notifiers, n)
	}
	slog.Info("notifiers registered", "available", notifier.Available(), "active", len(notifiers))

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)

	notifySvc := service.NewNotificationService(notifiers, cfg.Notify.Events, breaker)
	confidenceSvc := service.NewConfidenceService(store, thresholdCache, cfg.Cache.TTL, hub, metrics)
	escalationSvc := service.NewEscalationService(store, queue, hub, notifySvc, metrics,
		cfg.Scheduler.ScanBatchSize, cfg.Scheduler.MaxTargetRetries)
	approvalSvc := service.NewApprovalService(store)
	schedulerSvc := service.NewSchedulerService(store, queue, escalationSvc, cfg.Scheduler)

	if err := schedulerSvc.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer schedulerSvc.Stop()

	// --- HTTP ---
	handlers := &glhttp.Handlers{
		Confidence: confidenceSvc,
		Escalation: escalationSvc,
		Approvals:  approvalSvc,
		Scheduler:  schedulerSvc,
		Hub:        hub,
		Queue:      queue,
	}

	r := chi.NewRouter()
	r.Use(glhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(glhttp.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(glhttp.Logger)
	r.Use(glotel.HTTPMiddleware(cfg.Logging.Service))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	glhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
