package config

import (
	"errors"
	"testing"
	"time"

	"event-rsvp-service/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "BASE_URL", "SESSION_BACKEND", "SESSION_TTL", "OTEL_ENABLED", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("want port 8080, got %s", cfg.Port)
	}
	if cfg.SessionBackend != SessionBackendMemory {
		t.Errorf("want memory backend, got %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 14*24*time.Hour {
		t.Errorf("want 2 weeks session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.OtelEnabled {
		t.Error("want otel disabled by default")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SECRET_KEY", "k")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATE", "0.25")

	cfg := Load()
	if cfg.Port != "9090" || cfg.SecretKey != "k" || cfg.SessionBackend != "redis" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.SessionTTL != time.Hour || cfg.RedisDB != 3 {
		t.Errorf("unexpected session config: %+v", cfg)
	}
	if !cfg.OtelEnabled || cfg.OtelSamplingRate != 0.25 {
		t.Errorf("unexpected otel config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{DatabaseURL: "sqlite::memory:", SecretKey: "k", SessionBackend: SessionBackendMemory}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	kms := Config{DatabaseURL: "x", SecretKeyCiphertext: "Y2lwaGVy", KMSKeyName: "projects/p/keys/k", SessionBackend: SessionBackendRedis}
	if err := kms.Validate(); err != nil {
		t.Fatalf("expected valid kms config, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing database", Config{SecretKey: "k", SessionBackend: SessionBackendMemory}},
		{"missing secret key", Config{DatabaseURL: "x", SessionBackend: SessionBackendMemory}},
		{"ciphertext without kms key", Config{DatabaseURL: "x", SecretKeyCiphertext: "c", SessionBackend: SessionBackendMemory}},
		{"unknown backend", Config{DatabaseURL: "x", SecretKey: "k", SessionBackend: "memcached"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("want ErrConfiguration, got %v", err)
			}
		})
	}
}
