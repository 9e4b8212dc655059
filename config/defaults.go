package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options.
// Database defaults match the deployment environment the service inherited
// (localhost Postgres with the tec_data database).
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tec_data")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.ssl_mode", "disable")

	// Pipeline defaults
	v.SetDefault("pipeline.data_dir", "data")
	v.SetDefault("pipeline.days_back", 3)
	v.SetDefault("pipeline.fetch_timeout_seconds", 30)
	v.SetDefault("pipeline.batch_size", 1000)

	// Pulse (recurring runner) defaults
	v.SetDefault("pulse.interval_hours", 6)
	v.SetDefault("pulse.http_max_requests_per_minute", 60)
}

// BindSensitiveEnvVars binds database credentials to the plain environment
// variable names the deployment supplies, in addition to the TECFLOW_ prefix.
// Credentials never belong in tecflow.toml.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.host", "TECFLOW_DATABASE_HOST", "DB_HOST")
	v.BindEnv("database.port", "TECFLOW_DATABASE_PORT", "DB_PORT")
	v.BindEnv("database.name", "TECFLOW_DATABASE_NAME", "DB_NAME")
	v.BindEnv("database.user", "TECFLOW_DATABASE_USER", "DB_USER")
	v.BindEnv("database.password", "TECFLOW_DATABASE_PASSWORD", "DB_PASSWORD")
}
