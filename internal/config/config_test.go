package config

import (
	"encoding/base64"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DefaultMonthlyQueryLimit != 100 {
		t.Errorf("DefaultMonthlyQueryLimit = %d, want 100", cfg.DefaultMonthlyQueryLimit)
	}
	if len(cfg.Platforms) != 4 {
		t.Errorf("Platforms = %v, want 4 defaults", cfg.Platforms)
	}
	if cfg.SchedulerPollInterval != time.Minute {
		t.Errorf("SchedulerPollInterval = %v, want 1m", cfg.SchedulerPollInterval)
	}
	if len(cfg.EncryptionKey) != 32 {
		t.Errorf("EncryptionKey length = %d, want 32", len(cfg.EncryptionKey))
	}
}

func TestLoadRejectsUnknownStorageBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_BACKEND", "postgres")
	if _, err := Load(); err == nil {
		t.Error("Load() should reject unknown STORAGE_BACKEND")
	}

	t.Setenv("STORAGE_BACKEND", "embedded")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageBackend != "embedded" {
		t.Errorf("StorageBackend = %q, want embedded", cfg.StorageBackend)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load() should fail without JWT_SECRET")
	}
}

func TestLoadDerivedKeyIsStable(t *testing.T) {
	t.Setenv("JWT_SECRET", "stable-secret")

	a, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(a.EncryptionKey) != string(b.EncryptionKey) {
		t.Error("derived encryption key should be deterministic")
	}
}

func TestLoadExplicitEncryptionKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(key))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(cfg.EncryptionKey) != string(key) {
		t.Error("explicit encryption key not used")
	}

	t.Setenv("ENCRYPTION_KEY", "not-base64!")
	if _, err := Load(); err == nil {
		t.Error("Load() should reject malformed ENCRYPTION_KEY")
	}
}

func TestLoadPlatformsTrimmed(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PLATFORMS", "chatgpt, claude ,gemini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"chatgpt", "claude", "gemini"}
	if len(cfg.Platforms) != len(want) {
		t.Fatalf("Platforms = %v, want %v", cfg.Platforms, want)
	}
	for i := range want {
		if cfg.Platforms[i] != want[i] {
			t.Errorf("Platforms[%d] = %q, want %q", i, cfg.Platforms[i], want[i])
		}
	}
}

func TestSnapshotS3Enabled(t *testing.T) {
	cfg := &Config{SnapshotBucket: "bucket", StorageEndpoint: "https://s3.example.com"}
	if !cfg.SnapshotS3Enabled() {
		t.Error("expected S3 backend enabled")
	}
	cfg.StorageEndpoint = ""
	if cfg.SnapshotS3Enabled() {
		t.Error("expected S3 backend disabled without endpoint")
	}
}
