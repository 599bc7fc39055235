// Package config builds runtime configuration from environment variables so
// main stays lean. Every external collaborator (Postgres, Redis, Kafka, the
// evaluation oracle) is optional: an empty URL selects the in-memory or
// no-op implementation at wiring time.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Postgres captures document-store connection configuration.
type Postgres struct {
	URL string
}

// Redis captures cache/override-store connection configuration.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures pipeline event producer configuration.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Oracle captures the external evaluation oracle endpoint.
type Oracle struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Catalog captures where the round-catalog snapshot is loaded from.
type Catalog struct {
	Path     string
	CacheTTL time.Duration
}

// Retry captures retry-gate defaults. The freezing period is the mandatory
// cooldown after a failed round before a retake is permitted; it is read at
// evaluation time so runtime overrides take effect without a restart.
type Retry struct {
	FreezingPeriodDays float64
}

// FreezingPeriod converts the configured day count into a duration.
func (r Retry) FreezingPeriod() time.Duration {
	return time.Duration(r.FreezingPeriodDays * float64(24*time.Hour))
}

// Config is the root configuration for the service.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Oracle   Oracle
	Catalog  Catalog
	Retry    Retry
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Server: Server{
			Addr:          envOr("TALENTGATE_ADDR", ":8080"),
			JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Postgres: Postgres{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_PIPELINE_TOPIC", "talentgate.pipeline.events"),
		},
		Oracle: Oracle{
			BaseURL: os.Getenv("ORACLE_BASE_URL"),
			APIKey:  os.Getenv("ORACLE_API_KEY"),
			Model:   envOr("ORACLE_MODEL", "gpt-4o-mini"),
			Timeout: envDuration("ORACLE_TIMEOUT", 30*time.Second),
		},
		Catalog: Catalog{
			Path:     os.Getenv("CATALOG_PATH"),
			CacheTTL: envDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		},
		Retry: Retry{
			FreezingPeriodDays: envFloat("FREEZING_PERIOD_DAYS", 1),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
