package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Calendar CalendarConfig
	Webhook  WebhookConfig
	Sync     SyncConfig
	OTEL     OTELConfig
	Env      string
}

// ServerConfig holds server configuration. AllowedOrigins feeds the CORS
// layer; the wildcard default is for development only.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration, including the connection
// pool limits applied by the postgres client.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration. A zero PoolSize keeps the driver
// default.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// CalendarConfig holds the external calendar provider configuration. An
// empty ClientID selects the mock provider.
type CalendarConfig struct {
	TokenURL     string
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// WebhookConfig holds the change-notification boundary configuration.
type WebhookConfig struct {
	SigningSecret string
}

// SyncConfig holds calendar sync dispatch configuration. When UseQueue is
// set, change notifications are enqueued onto the durable Redis queue and
// drained by the sync worker; otherwise the dispatcher invokes the sync
// adapter in-process, fire-and-forget.
type SyncConfig struct {
	UseQueue    bool
	MaxAttempts int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "booking_scheduler"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_MIN", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 0),
		},
		Calendar: CalendarConfig{
			TokenURL:     getEnv("CALENDAR_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			BaseURL:      getEnv("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3"),
			ClientID:     getEnv("CALENDAR_CLIENT_ID", ""),
			ClientSecret: getEnv("CALENDAR_CLIENT_SECRET", ""),
			Timeout:      time.Duration(getEnvAsInt("CALENDAR_TIMEOUT_MS", 10000)) * time.Millisecond,
		},
		Webhook: WebhookConfig{
			SigningSecret: getEnv("CHANGE_WEBHOOK_SECRET", ""),
		},
		Sync: SyncConfig{
			UseQueue:    getEnvAsBool("SYNC_USE_QUEUE", false),
			MaxAttempts: getEnvAsInt("SYNC_MAX_ATTEMPTS", 5),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "booking-scheduler"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
