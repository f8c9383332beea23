package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("STORE_TIMEOUT_SECONDS", "")
	t.Setenv("STORE_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Fatalf("expected memory backend, got %s", cfg.StoreBackend)
	}
	if cfg.StoreTimeout != defaultStoreTimeout {
		t.Fatalf("expected store timeout %s, got %s", defaultStoreTimeout, cfg.StoreTimeout)
	}
}

func TestAddress(t *testing.T) {
	if got := (Config{Port: "9000"}).Address(); got != ":9000" {
		t.Fatalf("expected :9000, got %s", got)
	}
	if got := (Config{Port: ":7000"}).Address(); got != ":7000" {
		t.Fatalf("expected :7000, got %s", got)
	}
}

func TestLoadDurationVariants(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("IDEMPOTENCY_TTL", "90m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %s", cfg.ShutdownPeriod)
	}
	if cfg.IdempotencyTTL != 90*time.Minute {
		t.Fatalf("expected 90m idempotency ttl, got %s", cfg.IdempotencyTTL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("STORE_TIMEOUT_SECONDS", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected invalid STORE_TIMEOUT_SECONDS error")
	}
}

func TestValidateRequiresBackendURL(t *testing.T) {
	cases := []Config{
		{StoreBackend: BackendRedis},
		{StoreBackend: BackendPostgres},
		{StoreBackend: "etcd"},
	}
	for _, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected validation error for backend %q", cfg.StoreBackend)
		}
	}

	ok := Config{StoreBackend: BackendRedis, RedisURL: "redis://localhost:6379/0"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestKeyPrefixMayBeEmpty(t *testing.T) {
	t.Setenv("STORE_BACKEND", BackendMemory)
	t.Setenv("KEY_PREFIX", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.KeyPrefix != "" {
		t.Fatalf("expected empty key prefix, got %q", cfg.KeyPrefix)
	}
}
