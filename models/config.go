package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// Backend REST API the BFF forwards to
	BackendBaseURL string        `mapstructure:"backend_base_url"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout"`

	// BFF session cookie
	SessionCookieName string        `mapstructure:"session_cookie_name"`
	SessionSecret     string        `mapstructure:"session_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SessionCacheSize  int           `mapstructure:"session_cache_size"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`

	// Guards
	ContextWaitTimeout time.Duration `mapstructure:"context_wait_timeout"`

	// Client storage ("memory" or "dynamodb")
	StorageDriver    string `mapstructure:"storage_driver"`
	StorageCacheSize int    `mapstructure:"storage_cache_size"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// Session sweeper
	SweeperSchedule string `mapstructure:"sweeper_schedule"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	Tables []string `mapstructure:"tables"`
}

// StorageTable is the schema name of the client storage table
const StorageTable = "client_storage"

// TableName returns the prefixed name of a table
func (c *Config) TableName(base string) string {
	if c.DynamoDBTablePrefix == "" {
		return base
	}
	return c.DynamoDBTablePrefix + "_" + base
}

// StorageTableName returns the prefixed client storage table name
func (c *Config) StorageTableName() string {
	return c.TableName(StorageTable)
}
