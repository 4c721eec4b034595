package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends understood by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the storefront process configuration.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	Storage   StorageConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Tracing   TracingConfig
	Session   SessionConfig
	RateLimit RateLimitConfig

	// AdminVariant lets the admin page persist catalog overrides.
	AdminVariant bool
	// CollationLocale is the BCP 47 tag used for name-asc sorting.
	CollationLocale string
}

type StorageConfig struct {
	Backend string
	Prefix  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers []string
	// StockGroup is the consumer group that applies placed orders to catalog
	// stock. Empty disables the consumer.
	StockGroup string
}

type TracingConfig struct {
	Enabled        bool
	JaegerEndpoint string
}

// RateLimitConfig guards sign-in and admin unlock. It needs Redis.
type RateLimitConfig struct {
	Enabled bool
	Max     int
	Window  time.Duration
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	// MaxLive caps the sessions held in memory; idle ones are evicted after TTL.
	MaxLive int
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "storefront"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
			Prefix:  getEnv("STORAGE_PREFIX", "ministore"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefrontdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(getEnv("KAFKA_BROKERS", "")),
			StockGroup: getEnv("KAFKA_STOCK_GROUP", ""),
		},
		Tracing: TracingConfig{
			Enabled:        getEnvBool("TRACING_ENABLED", false),
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Session: SessionConfig{
			Secret:  getEnv("SESSION_SECRET", "dev-session-secret"),
			TTL:     getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			MaxLive: getEnvInt("SESSION_MAX_LIVE", 10000),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", false),
			Max:     getEnvInt("RATE_LIMIT_MAX", 10),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		AdminVariant:    getEnvBool("ADMIN_VARIANT", true),
		CollationLocale: getEnv("COLLATION_LOCALE", "id"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
