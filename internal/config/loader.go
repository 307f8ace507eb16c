package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/gruporuiz/tripetl/internal/config/dto"
)

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original deployment configured the function through these exact
	// environment variables; keep honoring them alongside the APP_ prefix.
	_ = v.BindEnv("storage.raw_bucket", "APP_STORAGE_RAW_BUCKET", "RAW_BUCKET_NAME")
	_ = v.BindEnv("storage.processed_bucket", "APP_STORAGE_PROCESSED_BUCKET", "PROCESSED_BUCKET_NAME")
	_ = v.BindEnv("bigquery.project_id", "APP_BIGQUERY_PROJECT_ID", "BIGQUERY_PROJECT_ID")

	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	// Set defaults
	l.setDefaults()

	// Load from file if provided
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Expand environment variables in config values
	// Only expand if the value contains ${...} pattern
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	// Unmarshal configuration
	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "trip-etl")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")

	// Storage defaults
	l.v.SetDefault("storage.use_default_credential", true)

	// BigQuery defaults mirror the analytical store the job was built for
	l.v.SetDefault("bigquery.dataset_id", "grupo_ruiz_dataset")
	l.v.SetDefault("bigquery.table_id", "viajes_autobuses_limpios")

	// Server defaults
	l.v.SetDefault("server.trigger_port", 8080)

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "json")
	l.v.SetDefault("observability.logging.output", "stdout")
	l.v.SetDefault("observability.metrics.enabled", true)
	l.v.SetDefault("observability.metrics.port", 9090)
	l.v.SetDefault("observability.metrics.path", "/metrics")
	l.v.SetDefault("observability.health.port", 8081)
	l.v.SetDefault("observability.health.liveness_path", "/health/live")
	l.v.SetDefault("observability.health.readiness_path", "/health/ready")

	// Shutdown defaults
	l.v.SetDefault("shutdown.grace_period_seconds", 10)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	if config.Storage.RawBucket == "" {
		return errors.New("storage.raw_bucket is required")
	}
	if config.Storage.ProcessedBucket == "" {
		return errors.New("storage.processed_bucket is required")
	}
	if config.BigQuery.ProjectID == "" {
		return errors.New("bigquery.project_id is required")
	}
	if config.BigQuery.DatasetID == "" {
		return errors.New("bigquery.dataset_id is required")
	}
	if config.BigQuery.TableID == "" {
		return errors.New("bigquery.table_id is required")
	}

	// Port validation
	if config.Server.TriggerPort < 1 || config.Server.TriggerPort > 65535 {
		return fmt.Errorf("invalid trigger port: %d", config.Server.TriggerPort)
	}
	if config.Observability.Metrics.Port < 1 || config.Observability.Metrics.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", config.Observability.Metrics.Port)
	}
	if config.Observability.Health.Port < 1 || config.Observability.Health.Port > 65535 {
		return fmt.Errorf("invalid health port: %d", config.Observability.Health.Port)
	}

	return nil
}
