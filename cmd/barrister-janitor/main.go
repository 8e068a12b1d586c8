package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/barrister-bot/barrister/pkg/audit"
)

var (
	dbURL         = flag.String("db-url", getEnv("BARRISTER_DATABASE_URL", "postgres://localhost/barrister?sslmode=disable"), "PostgreSQL connection URL")
	retentionDays = flag.Int("retention-days", getEnvInt("BARRISTER_AUDIT_RETENTION_DAYS", 365), "Audit entries older than this many days are pruned")
	schedule      = flag.String("schedule", getEnv("BARRISTER_AUDIT_PRUNE_SCHEDULE", "0 3 * * *"), "Cron schedule for the prune pass")
	runOnce       = flag.Bool("run-once", false, "Run one prune pass and exit")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if *retentionDays <= 0 {
		log.Fatalf("retention-days must be positive, got %d", *retentionDays)
	}

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	auditLog, err := audit.NewDBLogger(db)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}

	if *runOnce {
		if err := prune(auditLog, log); err != nil {
			log.Fatalf("Prune failed: %v", err)
		}
		return
	}

	c := cron.New()
	_, err = c.AddFunc(*schedule, func() {
		if err := prune(auditLog, log); err != nil {
			log.WithError(err).Error("Prune pass failed")
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule prune pass: %v", err)
	}

	c.Start()
	log.WithFields(logrus.Fields{
		"schedule":       *schedule,
		"retention_days": *retentionDays,
	}).Info("Barrister janitor started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info("Shutting down")

	ctx := c.Stop()
	<-ctx.Done()
	log.Info("Janitor stopped")
}

func prune(auditLog *audit.DBLogger, log *logrus.Logger) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -*retentionDays)
	log.WithField("cutoff", cutoff.Format(time.RFC3339)).Info("Starting prune pass")

	pruned, err := auditLog.Prune(context.Background(), cutoff)
	if err != nil {
		return err
	}
	log.WithField("pruned", pruned).Info("Prune pass completed")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
