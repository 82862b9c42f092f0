package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCutoverYear is the boundary of the legacy epoch: years up to and
// including it share one counter per ward, later years each get their own.
const DefaultCutoverYear = 2025

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	StrictWards   bool
	JWTSigningKey string
	AdminToken    string
	CutoverYear   int

	DatabaseURL  string
	Redis        RedisConfig
	KafkaBrokers []string
	KafkaTopic   string

	RecordsBaseURL string
	LinkRetryLimit int
}

// RedisConfig describes the optional Redis-backed counter store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TRICHLUC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "dev-admin-token"
	}

	cutover := DefaultCutoverYear
	if raw := os.Getenv("CUTOVER_YEAR"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			cutover = parsed
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "trichluc.allocations"
	}

	retryLimit := 5
	if raw := os.Getenv("LINK_RETRY_LIMIT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			retryLimit = parsed
		}
	}

	return Server{
		Addr:          addr,
		StrictWards:   os.Getenv("STRICT_WARDS") == "true",
		JWTSigningKey: jwtSigningKey,
		AdminToken:    adminToken,
		CutoverYear:   cutover,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers:   brokers,
		KafkaTopic:     topic,
		RecordsBaseURL: os.Getenv("RECORDS_BASE_URL"),
		LinkRetryLimit: retryLimit,
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
	}
	return fallback
}
