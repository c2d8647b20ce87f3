package utils

import (
	"fmt"
	"strings"
	"time"

	"planner-bff/models"

	"github.com/spf13/viper"
)

// DefaultSessionSecret is rejected in production
const DefaultSessionSecret = "change-this-session-secret-in-production"

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
)

// GetConfig read the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	flattenNestedConfig(v)

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "planner-bff")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8081")

	// Backend defaults
	v.SetDefault("backend_base_url", "http://localhost:8080/api")
	v.SetDefault("backend_timeout", 10*time.Second)

	// Session defaults
	v.SetDefault("session_cookie_name", "planner_session")
	v.SetDefault("session_secret", DefaultSessionSecret)
	v.SetDefault("session_ttl", 8*time.Hour)
	v.SetDefault("session_cache_size", 10000)
	v.SetDefault("cookie_secure", false)

	// Guards
	v.SetDefault("context_wait_timeout", 2*time.Second)

	// Client storage
	v.SetDefault("storage_driver", StorageMemory)
	v.SetDefault("storage_cache_size", 10000)

	// AWS defaults
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	// Sweeper; empty picks the environment schedule
	v.SetDefault("sweeper_schedule", "")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})

	// Base Path default
	v.SetDefault("basePath", "/api/v1")

	// setup tables to create
	v.SetDefault("tables", []string{models.StorageTable})
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.SessionSecret == DefaultSessionSecret && c.AppEnv == "production" {
		return fmt.Errorf("SESSION_SECRET must be set in production environment")
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.SessionCacheSize <= 0 {
		return fmt.Errorf("SESSION_CACHE_SIZE must be positive")
	}

	switch c.StorageDriver {
	case StorageMemory, StorageDynamoDB:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (want %s or %s)", c.StorageDriver, StorageMemory, StorageDynamoDB)
	}

	// In production, we should have AWS credentials set
	if c.AppEnv == "production" && c.StorageDriver == StorageDynamoDB && c.AWSAccessKeyID == "" {
		fmt.Println("No AWS credentials provided, assuming IAM role is used")
	}

	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	sections := map[string]string{
		// App section
		"app.name":    "app_name",
		"app.version": "app_version",
		"app.env":     "app_env",
		"app.host":    "app_host",
		"app.port":    "app_port",

		// Backend section
		"backend.base_url": "backend_base_url",
		"backend.timeout":  "backend_timeout",

		// Session section
		"session.cookie_name":   "session_cookie_name",
		"session.secret":        "session_secret",
		"session.ttl":           "session_ttl",
		"session.cache_size":    "session_cache_size",
		"session.cookie_secure": "cookie_secure",

		// Guards section
		"guards.context_wait_timeout": "context_wait_timeout",

		// Storage section
		"storage.driver":     "storage_driver",
		"storage.cache_size": "storage_cache_size",

		// AWS section
		"aws.region":                "aws_region",
		"aws.access_key_id":         "aws_access_key_id",
		"aws.secret_access_key":     "aws_secret_access_key",
		"aws.dynamodb_endpoint":     "dynamodb_endpoint",
		"aws.dynamodb_table_prefix": "dynamodb_table_prefix",

		// Sweeper section
		"sweeper.schedule": "sweeper_schedule",

		// Logging section
		"logging.level":  "log_level",
		"logging.format": "log_format",
	}

	for nested, flat := range sections {
		if v.IsSet(nested) {
			v.Set(flat, v.Get(nested))
		}
	}

	// CORS section
	if v.IsSet("cors.origins") {
		v.Set("cors_origins", v.GetStringSlice("cors.origins"))
	}
}
