package dto

import (
	"fmt"
	"time"
)

// ApplicationConfig is the root configuration structure
type ApplicationConfig struct {
	Application   ApplicationInfo     `mapstructure:"application"`
	Storage       StorageConfig       `mapstructure:"storage"`
	BigQuery      BigQueryConfig      `mapstructure:"bigquery"`
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Shutdown      ShutdownConfig      `mapstructure:"shutdown"`
}

// ApplicationInfo contains application metadata
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// StorageConfig contains bucket and credential configuration
type StorageConfig struct {
	RawBucket            string `mapstructure:"raw_bucket"`
	ProcessedBucket      string `mapstructure:"processed_bucket"`
	CredentialsFile      string `mapstructure:"credentials_file"`
	CredentialsJSON      string `mapstructure:"credentials_json"`
	UseDefaultCredential bool   `mapstructure:"use_default_credential"`
	Endpoint             string `mapstructure:"endpoint"`
}

// BigQueryConfig identifies the analytical table the job appends to
type BigQueryConfig struct {
	ProjectID string `mapstructure:"project_id"`
	DatasetID string `mapstructure:"dataset_id"`
	TableID   string `mapstructure:"table_id"`
}

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	TriggerPort int `mapstructure:"trigger_port"`
}

// ObservabilityConfig contains observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig contains health check settings
type HealthConfig struct {
	Port          int    `mapstructure:"port"`
	LivenessPath  string `mapstructure:"liveness_path"`
	ReadinessPath string `mapstructure:"readiness_path"`
}

// ShutdownConfig contains shutdown settings
type ShutdownConfig struct {
	GracePeriodSeconds time.Duration `mapstructure:"grace_period_seconds"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Application.Name == "" {
		return fmt.Errorf("application name is required")
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	return c.BigQuery.Validate()
}

// Validate validates storage configuration.
func (c *StorageConfig) Validate() error {
	if c.RawBucket == "" {
		return fmt.Errorf("storage raw bucket is required")
	}
	if c.ProcessedBucket == "" {
		return fmt.Errorf("storage processed bucket is required")
	}
	return nil
}

// Validate validates BigQuery configuration.
func (c *BigQueryConfig) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("bigquery project id is required")
	}
	if c.DatasetID == "" {
		return fmt.Errorf("bigquery dataset id is required")
	}
	if c.TableID == "" {
		return fmt.Errorf("bigquery table id is required")
	}
	return nil
}

// TableRef returns the fully qualified table identifier.
func (c *BigQueryConfig) TableRef() string {
	return fmt.Sprintf("%s.%s.%s", c.ProjectID, c.DatasetID, c.TableID)
}
