// Package config holds the tecflow service configuration.
//
// Configuration is layered: built-in defaults, an optional tecflow.toml file,
// then environment variables (TECFLOW_ prefix, plus the plain DB_* variables
// the deployment environment supplies for database credentials).
package config

import "fmt"

// Config represents the tecflow service configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Pulse    PulseConfig    `mapstructure:"pulse"`
}

// DatabaseConfig configures the target Postgres database
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN returns the connection string for the pgx stdlib driver
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode)
}

// PipelineConfig configures a single ingestion run
type PipelineConfig struct {
	DataDir             string `mapstructure:"data_dir"`              // where fetched artifacts are written (default: data)
	DaysBack            int    `mapstructure:"days_back"`             // sliding window of gas days, today inclusive (default: 3)
	FetchTimeoutSeconds int    `mapstructure:"fetch_timeout_seconds"` // per-attempt HTTP timeout (default: 30)
	BatchSize           int    `mapstructure:"batch_size"`            // rows per INSERT batch (default: 1000)
}

// PulseConfig configures the recurring runner
type PulseConfig struct {
	IntervalHours            int `mapstructure:"interval_hours"`               // hours between pipeline runs (default: 6)
	HTTPMaxRequestsPerMinute int `mapstructure:"http_max_requests_per_minute"` // polite pacing toward the operator (default: 60)
}
