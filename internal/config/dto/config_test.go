package dto

import "testing"

func validConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Application: ApplicationInfo{Name: "trip-etl", Version: "1.0.0", Environment: "test"},
		Storage: StorageConfig{
			RawBucket:            "raw-bucket",
			ProcessedBucket:      "processed-bucket",
			UseDefaultCredential: true,
		},
		BigQuery: BigQueryConfig{
			ProjectID: "grupo-ruiz-project",
			DatasetID: "grupo_ruiz_dataset",
			TableID:   "viajes_autobuses_limpios",
		},
		Server: ServerConfig{TriggerPort: 8080},
	}
}

func TestApplicationConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestApplicationConfig_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ApplicationConfig)
	}{
		{name: "missing name", mutate: func(c *ApplicationConfig) { c.Application.Name = "" }},
		{name: "missing raw bucket", mutate: func(c *ApplicationConfig) { c.Storage.RawBucket = "" }},
		{name: "missing processed bucket", mutate: func(c *ApplicationConfig) { c.Storage.ProcessedBucket = "" }},
		{name: "missing project", mutate: func(c *ApplicationConfig) { c.BigQuery.ProjectID = "" }},
		{name: "missing dataset", mutate: func(c *ApplicationConfig) { c.BigQuery.DatasetID = "" }},
		{name: "missing table", mutate: func(c *ApplicationConfig) { c.BigQuery.TableID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want error")
			}
		})
	}
}

func TestBigQueryConfig_TableRef(t *testing.T) {
	cfg := BigQueryConfig{
		ProjectID: "grupo-ruiz-project",
		DatasetID: "grupo_ruiz_dataset",
		TableID:   "viajes_autobuses_limpios",
	}
	want := "grupo-ruiz-project.grupo_ruiz_dataset.viajes_autobuses_limpios"
	if got := cfg.TableRef(); got != want {
		t.Errorf("TableRef() = %q, want %q", got, want)
	}
}
