package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/feedback-api/internal/config"
	"github.com/wolfman30/feedback-api/internal/messages"
	"github.com/wolfman30/feedback-api/internal/recaptcha"
	"github.com/wolfman30/feedback-api/pkg/logging"
)

// BuildRedisClient returns a configured Redis client, or nil when Redis is
// not configured. With verify set, an unreachable server also yields nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available; topic cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildTopicSource puts the Redis topic cache in front of store when a client
// is available.
func BuildTopicSource(store messages.TopicSource, client *redis.Client, cfg *appconfig.Config, logger *logging.Logger) messages.TopicSource {
	if client == nil {
		return store
	}
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.TopicCacheTTL
	logger.Info("topic cache enabled", "ttl", ttl.String())
	return messages.NewTopicCache(store, client, ttl, logger)
}

// BuildVerifier creates the challenge token verifier. Without a secret every
// token is rejected, which is logged once here.
func BuildVerifier(cfg *appconfig.Config, logger *logging.Logger) *recaptcha.Client {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.RecaptchaSecretKey) == "" {
		logger.Warn("RECAPTCHA_SECRET_KEY is not set; all submissions will fail verification")
	}
	return recaptcha.New(recaptcha.Config{
		Secret:    cfg.RecaptchaSecretKey,
		VerifyURL: cfg.RecaptchaVerifyURL,
		Timeout:   cfg.RecaptchaTimeout,
		Logger:    logger,
	})
}
