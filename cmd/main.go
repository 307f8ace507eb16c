package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gruporuiz/tripetl/internal/config"
	"github.com/gruporuiz/tripetl/internal/etl"
	"github.com/gruporuiz/tripetl/internal/job"
	"github.com/gruporuiz/tripetl/internal/observability"
	"github.com/gruporuiz/tripetl/internal/server"
	"github.com/gruporuiz/tripetl/internal/storage"
	"github.com/gruporuiz/tripetl/internal/validator"
	"github.com/gruporuiz/tripetl/internal/warehouse"
	pkgstorage "github.com/gruporuiz/tripetl/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Load configuration
	// Priority: CLI flag > CONFIG_PATH env var > default path
	var cfgPath string
	if *configPath != "" {
		cfgPath = *configPath
	} else if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath = "config/application.yaml"
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize observability
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	})
	logger.Info("starting trip ETL service",
		"version", cfg.Application.Version,
		"environment", cfg.Application.Environment,
		"raw_bucket", cfg.Storage.RawBucket,
		"processed_bucket", cfg.Storage.ProcessedBucket,
		"table", cfg.BigQuery.TableRef(),
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Track cleanup functions
	var cleanupFuncs []func() error
	addCleanup := func(name string, fn func() error) {
		cleanupFuncs = append(cleanupFuncs, fn)
		logger.Debug("registered cleanup", "component", name)
	}
	runCleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			if err := cleanupFuncs[i](); err != nil {
				logger.Error("cleanup failed", "error", err)
			}
		}
	}
	defer runCleanup()

	ctx := context.Background()

	// Initialize object store
	store, err := storage.NewGCSStore(ctx, storage.GCSConfig{
		CredentialsFile:      cfg.Storage.CredentialsFile,
		CredentialsJSON:      os.Getenv("GCP_CREDENTIALS_JSON"),
		Endpoint:             cfg.Storage.Endpoint,
		UseDefaultCredential: cfg.Storage.UseDefaultCredential,
	}, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create GCS store: %w", err)
	}
	addCleanup("gcs-store", store.Close)

	// Initialize analytical loader
	bqLoader, err := warehouse.NewBigQueryLoader(ctx, warehouse.BigQueryConfig{
		ProjectID:       cfg.BigQuery.ProjectID,
		DatasetID:       cfg.BigQuery.DatasetID,
		TableID:         cfg.BigQuery.TableID,
		CredentialsFile: cfg.Storage.CredentialsFile,
		CredentialsJSON: os.Getenv("GCP_CREDENTIALS_JSON"),
	}, logger, metrics)
	if err != nil {
		return fmt.Errorf("failed to create BigQuery loader: %w", err)
	}
	addCleanup("bigquery-loader", bqLoader.Close)

	// Wire the pipeline and the job
	pipeline := etl.NewPipeline(logger, metrics)
	etlJob := job.NewETLJob(job.Config{
		RawBucket:       cfg.Storage.RawBucket,
		ProcessedBucket: cfg.Storage.ProcessedBucket,
	}, store, bqLoader, pipeline, logger, metrics)

	// Wire the trigger endpoint
	eventValidator := validator.NewStorageEventValidator()
	trigger := server.NewTriggerHandler(cfg.Storage.RawBucket, eventValidator, etlJob, logger, metrics)

	healthChecker := &serviceHealthChecker{store: store, loader: bqLoader}

	httpServer := server.NewServer(
		cfg.Application.Name,
		cfg.Server.TriggerPort,
		cfg.Observability.Health.Port,
		cfg.Observability.Metrics.Port,
		trigger,
		healthChecker,
		registry,
		logger,
	)

	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	addCleanup("http-server", func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Info("application started successfully")

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("received termination signal")

	// Allow in-flight invocations to finish before cleanup runs
	time.Sleep(cfg.Shutdown.GracePeriodSeconds * time.Second)

	logger.Info("application stopped successfully")
	return nil
}

// serviceHealthChecker reports probe status from the clients an invocation
// needs. The service holds no state between invocations, so liveness is
// process-level; readiness requires the object store and the table loader.
type serviceHealthChecker struct {
	store  pkgstorage.ObjectStore
	loader pkgstorage.TableLoader
}

func (h *serviceHealthChecker) Liveness() bool {
	return true
}

func (h *serviceHealthChecker) Readiness(ctx context.Context) bool {
	return h.store != nil && h.loader != nil
}

func (h *serviceHealthChecker) GetStatus() map[string]string {
	status := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "unavailable"
	}
	return map[string]string{
		"object_store": status(h.store != nil),
		"table_loader": status(h.loader != nil),
	}
}
