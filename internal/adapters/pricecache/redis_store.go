package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"product-filter-service/internal/core/domain"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is shared by every replica so one invalidation clears all of them.
const DefaultRedisKey = "product_filter:price_range"

// RedisStore keeps the price range in Redis as JSON with a native key TTL.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable, key string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Get(ctx context.Context) (domain.PriceRange, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PriceRange{}, false, nil
	}
	if err != nil {
		return domain.PriceRange{}, false, fmt.Errorf("failed to read price range from redis: %w", err)
	}

	var value domain.PriceRange
	if err := json.Unmarshal(raw, &value); err != nil {
		// a corrupt entry counts as a miss and gets overwritten by the next Set
		return domain.PriceRange{}, false, nil
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, value domain.PriceRange, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode price range: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store price range in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete price range from redis: %w", err)
	}
	return nil
}
