package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "DB_MAX_CONNS", "MIGRATE_ON_START",
		"RECAPTCHA_SECRET_KEY", "RECAPTCHA_VERIFY_URL", "RECAPTCHA_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HTTPS_REDIRECTION", "REDIS_ADDR", "TOPIC_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DBMaxConns != 10 {
		t.Fatalf("expected default pool size 10, got %d", cfg.DBMaxConns)
	}
	if cfg.RecaptchaVerifyURL != defaultRecaptchaVerifyURL {
		t.Fatalf("expected default verify url, got %s", cfg.RecaptchaVerifyURL)
	}
	if cfg.RecaptchaTimeout != 10*time.Second {
		t.Fatalf("expected default recaptcha timeout, got %s", cfg.RecaptchaTimeout)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://localhost:4200"}) {
		t.Fatalf("expected default CORS origin, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.EnableHTTPSRedirection {
		t.Fatalf("expected https redirection disabled by default")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if cfg.TopicCacheTTL != 10*time.Minute {
		t.Fatalf("expected default topic cache ttl, got %s", cfg.TopicCacheTTL)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("RECAPTCHA_SECRET_KEY", " secret ")
	t.Setenv("RECAPTCHA_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ENABLE_HTTPS_REDIRECTION", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TOPIC_CACHE_TTL", "1h")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.DBMaxConns != 25 {
		t.Fatalf("expected pool override, got %d", cfg.DBMaxConns)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected migrate on start enabled")
	}
	if cfg.RecaptchaSecretKey != "secret" {
		t.Fatalf("expected trimmed secret, got %q", cfg.RecaptchaSecretKey)
	}
	if cfg.RecaptchaTimeout != 3*time.Second {
		t.Fatalf("expected recaptcha timeout override, got %s", cfg.RecaptchaTimeout)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.EnableHTTPSRedirection {
		t.Fatalf("expected https redirection enabled")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("expected redis override, got %s", cfg.RedisAddr)
	}
	if cfg.TopicCacheTTL != time.Hour {
		t.Fatalf("expected topic cache ttl override, got %s", cfg.TopicCacheTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("RECAPTCHA_TIMEOUT", "soon")
	t.Setenv("ENABLE_HTTPS_REDIRECTION", "maybe")
	cfg := Load()
	if cfg.DBMaxConns != 10 {
		t.Fatalf("expected fallback pool size, got %d", cfg.DBMaxConns)
	}
	if cfg.RecaptchaTimeout != 10*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.RecaptchaTimeout)
	}
	if cfg.EnableHTTPSRedirection {
		t.Fatalf("expected fallback to disabled")
	}
}
