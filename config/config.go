// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"event-rsvp-service/internal/domain"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config はアプリケーション設定を表す。
type Config struct {
	Port          string
	BaseURL       string
	DatabaseURL   string
	DBAutoMigrate bool

	// SecretKey はシークレット導出に使うサーバー鍵。
	// 未設定の場合は SecretKeyCiphertext をCloud KMSで復号して使う。
	SecretKey           string
	SecretKeyCiphertext string
	KMSKeyName          string

	SessionBackend      string
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool
	RedisAddr           string
	RedisPassword       string
	RedisDB             int

	GoogleCloudProject string
	LogLevel           string

	OtelEnabled      bool
	OtelEndpoint     string
	OtelInsecure     bool
	OtelServiceName  string
	OtelSamplingRate float64
}

// Load は環境変数から設定を読み込む。
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DBAutoMigrate:       getEnvBool("DB_AUTO_MIGRATE", false),
		SecretKey:           os.Getenv("SECRET_KEY"),
		SecretKeyCiphertext: os.Getenv("SECRET_KEY_CIPHERTEXT"),
		KMSKeyName:          os.Getenv("KMS_KEY_NAME"),
		SessionBackend:      getEnv("SESSION_BACKEND", SessionBackendMemory),
		SessionTTL:          getEnvDuration("SESSION_TTL", 14*24*time.Hour),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "sessionid"),
		SessionCookieSecure: getEnvBool("SESSION_COOKIE_SECURE", false),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		GoogleCloudProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		LogLevel:            getEnv("LOG_LEVEL", "INFO"),
		OtelEnabled:         getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:        getEnv("OTEL_ENDPOINT", "localhost:4317"),
		OtelInsecure:        getEnvBool("OTEL_INSECURE", false),
		OtelServiceName:     getEnv("OTEL_SERVICE_NAME", "event-rsvp-service"),
		OtelSamplingRate:    getEnvFloat("OTEL_SAMPLING_RATE", 1.0),
	}
}

// Validate は起動に必須の設定を検証する。
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is not set", domain.ErrConfiguration)
	}
	if c.SecretKey == "" && c.SecretKeyCiphertext == "" {
		return fmt.Errorf("%w: SECRET_KEY or SECRET_KEY_CIPHERTEXT is required", domain.ErrConfiguration)
	}
	if c.SecretKey == "" && c.KMSKeyName == "" {
		return fmt.Errorf("%w: KMS_KEY_NAME is required to decrypt SECRET_KEY_CIPHERTEXT", domain.ErrConfiguration)
	}
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("%w: unknown SESSION_BACKEND %q", domain.ErrConfiguration, c.SessionBackend)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}
