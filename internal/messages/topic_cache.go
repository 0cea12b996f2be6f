package messages

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/feedback-api/pkg/logging"
)

const (
	topicCacheKey        = "feedback:topics"
	defaultTopicCacheTTL = 10 * time.Minute
)

// TopicCache is a Redis read-through cache in front of a TopicSource. Redis
// failures are logged and the source is used instead; topics change only by
// migration, so entries simply expire.
type TopicCache struct {
	source TopicSource
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewTopicCache wraps source with a cache stored in client.
func NewTopicCache(source TopicSource, client *redis.Client, ttl time.Duration, logger *logging.Logger) *TopicCache {
	if source == nil {
		panic("messages: topic source cannot be nil")
	}
	if client == nil {
		panic("messages: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultTopicCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TopicCache{source: source, redis: client, ttl: ttl, logger: logger}
}

var _ TopicSource = (*TopicCache)(nil)

func (c *TopicCache) ListTopics(ctx context.Context) ([]Topic, error) {
	if topics, ok := c.cached(ctx); ok {
		return topics, nil
	}

	topics, err := c.source.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(topics)
	if err == nil {
		err = c.redis.Set(ctx, topicCacheKey, data, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("topic cache: failed to populate", "error", err)
	}
	return topics, nil
}

// FindTopic serves id from the cached list and asks the source when the list
// is unavailable or does not contain it.
func (c *TopicCache) FindTopic(ctx context.Context, id int) (*Topic, error) {
	if topics, ok := c.cached(ctx); ok {
		for _, t := range topics {
			if t.ID == id {
				return &t, nil
			}
		}
	}
	return c.source.FindTopic(ctx, id)
}

// Invalidate drops the cached list.
func (c *TopicCache) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, topicCacheKey).Err()
}

func (c *TopicCache) cached(ctx context.Context) ([]Topic, bool) {
	data, err := c.redis.Get(ctx, topicCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("topic cache: read failed", "error", err)
		}
		return nil, false
	}
	var topics []Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		c.logger.Warn("topic cache: dropping undecodable entry", "error", err)
		return nil, false
	}
	return topics, true
}
