package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Storage       StorageConfig
	Statement     StatementConfig
	Observability ObservabilityConfig
	Admin         AdminConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	AllowedOrigins     string
	RateLimitPerSecond int
	RateLimitBurst     int
	ShutdownTimeout    time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type StorageConfig struct {
	Root string
}

// StatementConfig controls statement uploads and parsing.
type StatementConfig struct {
	QRHintsEnabled bool
	MaxUploadMB    int
	RetentionDays  int
	PurgeCron      string
}

type ObservabilityConfig struct {
	LogLevel       string
	MetricsEnabled bool
	MetricsPort    int
	ServiceName    string
}

type AdminConfig struct {
	Token string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins:     getEnv("SERVER_ALLOWED_ORIGINS", "http://localhost:3000"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 2),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 5),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "pesa-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Root: getEnv("STORAGE_ROOT", "./data/uploads"),
		},
		Statement: StatementConfig{
			QRHintsEnabled: getEnvAsBool("STATEMENT_QR_HINTS", true),
			MaxUploadMB:    getEnvAsInt("STATEMENT_MAX_UPLOAD_MB", 10),
			RetentionDays:  getEnvAsInt("STATEMENT_RETENTION_DAYS", 90),
			PurgeCron:      getEnv("STATEMENT_PURGE_CRON", "0 3 * * *"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "pesa-insights"),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Statement.MaxUploadMB <= 0 {
		return errors.New("STATEMENT_MAX_UPLOAD_MB must be positive")
	}
	if c.Statement.RetentionDays < 0 {
		return errors.New("STATEMENT_RETENTION_DAYS must not be negative")
	}
	if c.Server.RateLimitPerSecond <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.New("SERVER_RATE_LIMIT_PER_SECOND and SERVER_RATE_LIMIT_BURST must be positive")
	}
	if c.Storage.Root == "" {
		return errors.New("STORAGE_ROOT is required")
	}
	return nil
}

// MaxUploadBytes is the multipart form limit for statement uploads.
func (c *StatementConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Retention is how long uploaded PDFs are kept. Zero disables purging.
func (c *StatementConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Addr returns the listen address for the API server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
