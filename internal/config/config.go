package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL    string
	DBMaxConns     int
	MigrateOnStart bool

	// reCAPTCHA verification
	RecaptchaSecretKey string
	RecaptchaVerifyURL string
	RecaptchaTimeout   time.Duration

	// HTTP surface
	CORSAllowedOrigins     []string
	EnableHTTPSRedirection bool

	// Optional topic cache
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	TopicCacheTTL time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:    strings.TrimSpace(getEnv("DATABASE_URL", "")),
		DBMaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
		MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", false),

		RecaptchaSecretKey: strings.TrimSpace(getEnv("RECAPTCHA_SECRET_KEY", "")),
		RecaptchaVerifyURL: getEnv("RECAPTCHA_VERIFY_URL", defaultRecaptchaVerifyURL),
		RecaptchaTimeout:   getEnvAsDuration("RECAPTCHA_TIMEOUT", 10*time.Second),

		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:4200"}),
		EnableHTTPSRedirection: getEnvAsBool("ENABLE_HTTPS_REDIRECTION", false),

		RedisAddr:     strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		TopicCacheTTL: getEnvAsDuration("TOPIC_CACHE_TTL", 10*time.Minute),
	}
}

// Validate reports settings the API cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
