package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// Session cookie settings
	SessionTTL        time.Duration
	SessionCookieName string

	// File storage
	UploadDir string

	Algolia AlgoliaConfig
	Kafka   KafkaConfig

	RateLimit RateLimitConfig
}

// AlgoliaConfig configures the hosted search index. Search falls back
// to SQL filtering when AppID is empty.
type AlgoliaConfig struct {
	AppID     string
	APIKey    string
	IndexName string
}

// KafkaConfig configures the event transport. An in-process pub/sub is
// used when no brokers are configured.
type KafkaConfig struct {
	Brokers []string
}

// RateLimitConfig holds fixed-window quotas for the abuse-prone endpoints.
type RateLimitConfig struct {
	AuthPerMinute    int
	ProposalsPerHour int
	UploadsPerHour   int
}

// LoadConfig reads configuration from the environment, with .env support
// for local development.
func LoadConfig() (*Config, error) {
	// Ignore missing .env; production uses real environment variables
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "conference_session"),

		UploadDir: getEnv("UPLOAD_DIR", "storage/proposals"),

		Algolia: AlgoliaConfig{
			AppID:     os.Getenv("ALGOLIA_APP_ID"),
			APIKey:    os.Getenv("ALGOLIA_API_KEY"),
			IndexName: getEnv("ALGOLIA_INDEX_NAME", "proposals"),
		},

		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
		},

		RateLimit: RateLimitConfig{
			AuthPerMinute:    getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 5),
			ProposalsPerHour: getEnvInt("RATE_LIMIT_PROPOSALS_PER_HOUR", 10),
			UploadsPerHour:   getEnvInt("RATE_LIMIT_UPLOADS_PER_HOUR", 20),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

// SearchEnabled reports whether the hosted search index is configured.
func (c *Config) SearchEnabled() bool {
	return c.Algolia.AppID != "" && c.Algolia.APIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
