package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// KV storage backends
const (
	KVBackendPostgres = "postgres"
	KVBackendSQLite   = "sqlite"
)

// Config holds all configuration for the API server
type Config struct {
	// Storage
	KVBackend   string
	DatabaseURL string
	SQLitePath  string

	// Identity provider
	Identity IdentityConfig

	// Server
	Port             string
	CORSOrigins      []string
	Env              string
	ServicePrefix    string
	SignupRatePerMin int
	SignupBurst      int

	// S3 report archive (disabled when Bucket is empty)
	S3 S3Config

	// AMQP change feed (disabled when URL is empty)
	AMQP AMQPConfig
}

// IdentityConfig holds identity provider configuration
type IdentityConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string

	// JWTSecret enables local HS256 validation of bearer tokens instead of a
	// round trip to the provider for every request
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	TokenCacheSize int
	TokenCacheTTL  time.Duration
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
	URLExpiry       time.Duration
}

// Enabled reports whether a report archive bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// AMQPConfig holds the change-event broker configuration
type AMQPConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether change events are published to a broker
func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

// ClientConfig holds configuration for the ledger command-line client
type ClientConfig struct {
	APIURL      string
	IdentityURL string
	AnonKey     string
	Email       string
	Password    string
	ExportDir   string
	Timeout     time.Duration
}

// Load reads server configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		KVBackend:   getEnv("KV_BACKEND", KVBackendPostgres),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "data/ledger.db"),
		Identity: IdentityConfig{
			URL:            strings.TrimSuffix(getEnv("IDENTITY_URL", ""), "/"),
			AnonKey:        getEnv("IDENTITY_ANON_KEY", ""),
			ServiceKey:     getEnv("IDENTITY_SERVICE_KEY", ""),
			JWTSecret:      getEnv("IDENTITY_JWT_SECRET", ""),
			JWTIssuer:      getEnv("IDENTITY_JWT_ISSUER", ""),
			JWTAudience:    getEnv("IDENTITY_JWT_AUDIENCE", "authenticated"),
			TokenCacheSize: getEnvInt("TOKEN_CACHE_SIZE", 1024),
			TokenCacheTTL:  getEnvDuration("TOKEN_CACHE_TTL", 0),
		},
		Port:             getEnv("PORT", "8080"),
		CORSOrigins:      strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:              getEnv("ENV", "development"),
		ServicePrefix:    strings.Trim(getEnv("SERVICE_PREFIX", "budget-ledger"), "/"),
		SignupRatePerMin: getEnvInt("SIGNUP_RATE_PER_MINUTE", 10),
		SignupBurst:      getEnvInt("SIGNUP_BURST", 3),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
			URLExpiry:       getEnvDuration("S3_URL_EXPIRY", 15*time.Minute),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "ledger.changes"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.KVBackend {
	case KVBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case KVBackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("KV_BACKEND must be %q or %q, got %q", KVBackendPostgres, KVBackendSQLite, c.KVBackend)
	}
	if c.Identity.URL == "" {
		return fmt.Errorf("IDENTITY_URL is required")
	}
	if c.Identity.ServiceKey == "" {
		return fmt.Errorf("IDENTITY_SERVICE_KEY is required")
	}
	if c.ServicePrefix == "" {
		return fmt.Errorf("SERVICE_PREFIX must not be empty")
	}
	return nil
}

// LoadClient reads command-line client configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		APIURL:      strings.TrimSuffix(getEnv("LEDGER_API_URL", "http://localhost:8080/budget-ledger"), "/"),
		IdentityURL: strings.TrimSuffix(getEnv("IDENTITY_URL", ""), "/"),
		AnonKey:     getEnv("IDENTITY_ANON_KEY", ""),
		Email:       getEnv("LEDGER_EMAIL", ""),
		Password:    getEnv("LEDGER_PASSWORD", ""),
		ExportDir:   getEnv("LEDGER_EXPORT_DIR", "."),
		Timeout:     getEnvDuration("LEDGER_HTTP_TIMEOUT", 15*time.Second),
	}

	if cfg.IdentityURL == "" {
		return nil, fmt.Errorf("IDENTITY_URL is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
