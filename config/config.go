package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the process, one field per environment
// variable. Values are read once at boot; .env loading happens in main
// before LoadConfig runs.
type Config struct {
	SERVICE_NAME                string
	SERVICE_VERSION             string
	ENVIRONMENT                 string
	OTEL_EXPORTER_OTLP_ENDPOINT string
	OTEL_RESOURCE_ATTRIBUTES    string
	LOG_LEVEL                   string
	METRIC_INTERVAL             time.Duration
	RUNTIME_METRICS             bool
	REQUESTS_METRIC             bool
	DEVELOPMENT_MODE            bool
	SERVER_PORT                 string
	MYSQL_HOST                  string
	MYSQL_PORT                  string
	MYSQL_USER                  string
	MYSQL_PASSWORD              string
	MYSQL_DBNAME                string
	REDIS_ADDRESS               string
	REDIS_PASSWORD              string
	JWT_SECRET_KEY              string
	ADMIN_EMAIL                 string
	ADMIN_PASSWORD              string
	REMINDER_SCHEDULE           string
	REMINDER_DAYS_AHEAD         int
	SHUTDOWN_TIMEOUT            time.Duration
}

func LoadConfig() (*Config, error) {
	return &Config{
		SERVICE_NAME:                envString("SERVICE_NAME", "nammapaisa"),
		SERVICE_VERSION:             envString("SERVICE_VERSION", "1.0.0"),
		ENVIRONMENT:                 envString("ENVIRONMENT", "production"),
		OTEL_EXPORTER_OTLP_ENDPOINT: envString("OTEL_EXPORTER_OTLP_ENDPOINT", "0.0.0.0:4317"),
		OTEL_RESOURCE_ATTRIBUTES:    envString("OTEL_RESOURCE_ATTRIBUTES", "service.name=nammapaisa,service.namespace=nammapaisa-group,deployment.environment=production"),
		LOG_LEVEL:                   envString("LOG_LEVEL", "info"),
		METRIC_INTERVAL:             envDuration("METRIC_INTERVAL", 15*time.Second),
		RUNTIME_METRICS:             envBool("RUNTIME_METRICS", true),
		REQUESTS_METRIC:             envBool("REQUESTS_METRIC", true),
		DEVELOPMENT_MODE:            envBool("DEVELOPMENT_MODE", false),
		SERVER_PORT:                 envString("SERVER_PORT", "3001"),
		MYSQL_HOST:                  envString("MYSQL_HOST", "127.0.0.1"),
		MYSQL_PORT:                  envString("MYSQL_PORT", "3306"),
		MYSQL_USER:                  envString("MYSQL_USER", "root"),
		MYSQL_PASSWORD:              envString("MYSQL_PASSWORD", ""),
		MYSQL_DBNAME:                envString("MYSQL_DBNAME", "nammapaisa"),
		REDIS_ADDRESS:               envString("REDIS_ADDRESS", "localhost:6379"),
		REDIS_PASSWORD:              envString("REDIS_PASSWORD", ""),
		JWT_SECRET_KEY:              envString("JWT_SECRET_KEY", ""),
		ADMIN_EMAIL:                 envString("ADMIN_EMAIL", "admin@nammapaisa.local"),
		ADMIN_PASSWORD:              envString("ADMIN_PASSWORD", "admin123"),
		REMINDER_SCHEDULE:           envString("REMINDER_SCHEDULE", "0 8 * * *"),
		REMINDER_DAYS_AHEAD:         envInt("REMINDER_DAYS_AHEAD", 3),
		SHUTDOWN_TIMEOUT:            envDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func envBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
