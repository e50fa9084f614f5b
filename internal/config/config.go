// Package config handles application configuration.
package config

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Authentication
	JWTSecret     string
	JWTExpiry     time.Duration
	EncryptionKey []byte // 32-byte key for AES-256-GCM snapshot encryption

	// Execution workflow boundary
	WorkflowWebhookURL      string // outbound: prompt executions are POSTed here
	ExecutionWebhookSecret  string // Svix signing secret for the inbound result callback
	Platforms               []string

	// Stripe (subscription plan sync)
	StripeSecretKey     string
	StripeWebhookSecret string

	// CORS
	CORSOrigins []string

	// Quota defaults for new profiles
	DefaultMonthlyQueryLimit int

	// Storage backend: "sqlite" (server database) or "embedded"
	// (snapshot-persisted in-memory store, for local and demo setups).
	StorageBackend string

	// Embedded store snapshot persistence
	SnapshotPath   string // local file backend (default)
	SnapshotBucket string // S3 backend, used when set together with endpoint
	SnapshotKey    string // object key / logical key for the snapshot blob
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageRegion    string

	// Scheduler
	SchedulerEnabled      bool
	SchedulerPollInterval time.Duration
	StaleExecutionAge     time.Duration

	// Scale-to-zero: stop the server after this long with no traffic.
	// Zero disables idle shutdown.
	IdleTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:brandlens.db?_journal=WAL&_timeout=5000"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: getEnvDuration("JWT_EXPIRY", 24*time.Hour),

		WorkflowWebhookURL:     getEnv("WORKFLOW_WEBHOOK_URL", ""),
		ExecutionWebhookSecret: getEnv("EXECUTION_WEBHOOK_SECRET", ""),
		Platforms:              getEnvSlice("PLATFORMS", []string{"chatgpt", "claude", "gemini", "perplexity"}),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		DefaultMonthlyQueryLimit: getEnvInt("DEFAULT_MONTHLY_QUERY_LIMIT", 100),

		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),

		SnapshotPath:     getEnv("SNAPSHOT_PATH", "brandlens-local.snapshot"),
		SnapshotBucket:   getEnvWithFallback("BUCKET_NAME", "SNAPSHOT_BUCKET", ""),
		SnapshotKey:      getEnv("SNAPSHOT_KEY", "snapshots/localdb.snapshot"),
		StorageEndpoint:  getEnv("AWS_ENDPOINT_URL_S3", ""),
		StorageAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		StorageSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		StorageRegion:    getEnv("AWS_REGION", "auto"),

		SchedulerEnabled:      getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerPollInterval: getEnvDuration("SCHEDULER_POLL_INTERVAL", time.Minute),
		StaleExecutionAge:     getEnvDuration("STALE_EXECUTION_AGE", time.Hour),

		IdleTimeout: getEnvDuration("IDLE_TIMEOUT", 0),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.StorageBackend != "sqlite" && cfg.StorageBackend != "embedded" {
		return nil, fmt.Errorf("STORAGE_BACKEND must be \"sqlite\" or \"embedded\"")
	}

	// Set up encryption key (derive from JWT secret if not explicitly set)
	if encKeyStr := getEnv("ENCRYPTION_KEY", ""); encKeyStr != "" {
		decoded, err := base64.StdEncoding.DecodeString(encKeyStr)
		if err != nil || len(decoded) != 32 {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be a base64-encoded 32-byte key")
		}
		cfg.EncryptionKey = decoded
	} else {
		cfg.EncryptionKey = deriveEncryptionKey(cfg.JWTSecret)
	}

	return cfg, nil
}

// SnapshotS3Enabled returns true if the S3 snapshot backend is configured.
func (c *Config) SnapshotS3Enabled() bool {
	return c.SnapshotBucket != "" && c.StorageEndpoint != ""
}

// DispatchEnabled returns true if the outbound workflow webhook is configured.
func (c *Config) DispatchEnabled() bool {
	return c.WorkflowWebhookURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvWithFallback(primary, fallback, defaultValue string) string {
	if value := os.Getenv(primary); value != "" {
		return value
	}
	if value := os.Getenv(fallback); value != "" {
		return value
	}
	return defaultValue
}

// deriveEncryptionKey creates a 32-byte AES-256 key from a secret string
// using HKDF-SHA256, bound to the snapshot-encryption purpose.
func deriveEncryptionKey(secret string) []byte {
	salt := []byte("brandlens-api-encryption-key-v1")
	info := []byte("aes-256-gcm-snapshot-encryption")

	hkdfReader := hkdf.New(sha256.New, []byte(secret), salt, info)

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdfReader, key); err != nil {
		// This should never happen with valid inputs
		panic("hkdf: failed to derive key: " + err.Error())
	}

	return key
}
