package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"admind/pkg/api"
	"admind/pkg/auth"
	"admind/pkg/config"
	"admind/pkg/observability"
	"admind/pkg/storage/postgres"
	"admind/pkg/uploads"
)

func main() {
	// Optional .env file for local development
	if err := godotenv.Load(); err == nil {
		logrus.Info("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := postgres.Connect(postgres.ConnectionConfig{
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnLifetime: cfg.Database.ConnLifetime,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("Failed to apply schema")
	}
	if err := postgres.Seed(ctx, db); err != nil {
		logrus.WithError(err).Fatal("Failed to seed roles and permissions")
	}
	logrus.Info("Schema applied and default roles seeded")

	sessions, err := auth.NewSessionManager(cfg.Session.Secret)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize session manager")
	}

	uploadHandler, err := uploads.NewHandler(cfg.Uploads.Dir, "/api/uploads")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize upload storage")
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
		go observeDBStats(ctx, metrics, db)
	}

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewServer(api.Deps{
			DB:             db,
			Sessions:       sessions,
			Logger:         logger,
			Metrics:        metrics,
			Uploads:        uploadHandler,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("Starting admin API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
}

// observeDBStats refreshes connection pool gauges until shutdown
func observeDBStats(ctx context.Context, metrics *observability.Metrics, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ObserveDBStats(db)
		}
	}
}
