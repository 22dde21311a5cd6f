package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Absent backends (postgres,
// redis, kafka) leave the service on its in-memory stores, which keeps local
// development and tests free of external dependencies.
type Config struct {
	Addr     string
	LogLevel string

	PostgresURL string
	RedisURL    string

	KafkaBrokers []string
	KafkaTopic   string

	// JWTSigningKey verifies bearer tokens minted by the external
	// authentication layer. TrustCallerHeader additionally accepts the
	// X-Vitalis-Account header; only enable it behind a trusted proxy.
	JWTSigningKey     string
	TrustCallerHeader bool

	// BootstrapPath points at the YAML file of initial role grants applied
	// once at startup, before the server accepts traffic.
	BootstrapPath string

	ShutdownTimeout time.Duration
}

// RedisConfig carries connection tuning for the redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Redis derives a RedisConfig with pool defaults from the top-level config.
func (c Config) Redis() RedisConfig {
	return RedisConfig{
		URL:          c.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("VITALIS_ADDR", ":8080"),
		LogLevel:        envOr("VITALIS_LOG_LEVEL", "info"),
		PostgresURL:     os.Getenv("VITALIS_POSTGRES_URL"),
		RedisURL:        os.Getenv("VITALIS_REDIS_URL"),
		KafkaTopic:      envOr("VITALIS_KAFKA_TOPIC", "vitalis.audit"),
		JWTSigningKey:   os.Getenv("VITALIS_JWT_SIGNING_KEY"),
		BootstrapPath:   os.Getenv("VITALIS_BOOTSTRAP_FILE"),
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := os.Getenv("VITALIS_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	cfg.TrustCallerHeader = os.Getenv("VITALIS_TRUST_CALLER_HEADER") == "true"
	if cfg.JWTSigningKey == "" {
		// Development default; override in any real deployment.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
