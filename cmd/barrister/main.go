package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/barrister-bot/barrister/pkg/api"
	"github.com/barrister-bot/barrister/pkg/audit"
	"github.com/barrister-bot/barrister/pkg/cases"
	"github.com/barrister-bot/barrister/pkg/config"
	"github.com/barrister-bot/barrister/pkg/firm"
	"github.com/barrister-bot/barrister/pkg/jobs"
	"github.com/barrister-bot/barrister/pkg/observability"
	"github.com/barrister-bot/barrister/pkg/permissions"
	"github.com/barrister-bot/barrister/pkg/retainers"
	"github.com/barrister-bot/barrister/pkg/rules"
	"github.com/barrister-bot/barrister/pkg/staff"
	"github.com/barrister-bot/barrister/pkg/validation"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Stores own their schema; bring every table up before serving.
	configStore := permissions.NewStore(db)
	staffStore := staff.NewStore(db)
	caseStore := cases.NewStore(db)
	jobStore := jobs.NewStore(db)
	retainerStore := retainers.NewStore(db)
	for name, ensure := range map[string]func(context.Context) error{
		"guild_permission_configs": configStore.EnsureSchema,
		"staff_records":            staffStore.EnsureSchema,
		"cases":                    caseStore.EnsureSchema,
		"job_postings":             jobStore.EnsureSchema,
		"retainers":                retainerStore.EnsureSchema,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatalf("Failed to ensure %s schema: %v", name, err)
		}
	}
	auditLog, err := audit.NewDBLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to ping redis: %v", err)
		}
		defer redisClient.Close()
	}

	var metrics *observability.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	cache := permissions.NewConfigCache(redisClient, cfg.Cache.GuildConfigSize, cfg.Cache.GuildConfigTTL)
	permSvc := permissions.NewService(configStore, cache, logger, metrics)
	ruleSvc := rules.NewService(staffStore, caseStore, permSvc, logger, metrics)
	firmSvc := firm.NewService(staffStore, caseStore, permSvc, ruleSvc, auditLog, logger)
	jobSvc := jobs.NewService(jobStore, permSvc, auditLog, logger)
	retainerSvc := retainers.NewService(retainerStore, permSvc, auditLog, logger)
	validator := validation.NewDefaultService(ruleSvc, logger)

	server := api.NewServer(api.ServerOptions{
		Firm:       firmSvc,
		Perms:      permSvc,
		Configs:    configStore,
		Jobs:       jobSvc,
		Retainers:  retainerSvc,
		Cache:      cache,
		AuditLog:   auditLog,
		AuditQuery: auditLog,
		Validator:  validator,
		DB:         db,
		Logger:     logger,
	})

	handler := server.Handler()
	if metrics != nil {
		handler = metrics.HTTPMiddleware(handler)
	}
	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Separate listener for k8s probes and Prometheus scrapes
	health := observability.NewHealthChecker(db, redisClient)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", health.Liveness)
	healthMux.HandleFunc("/readyz", health.Readiness)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", observability.Handler(registry))
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("Barrister decision API listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-sigChan:
		logger.Infof("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API server shutdown failed")
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Health server shutdown failed")
	}
	logger.Info("Barrister stopped")
}
