package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ken-Miles/farm-computer/internal/cache"
	"github.com/Ken-Miles/farm-computer/pkg/logger"
	"github.com/Ken-Miles/farm-computer/pkg/utils"
)

// Store persists cache entries across restarts. Entries carry their own
// cachedAt so expiry stays the cache layer's decision; the redis TTL here
// is only a retention floor that garbage-collects long-dead keys.
type Store struct {
	client    *redis.Client
	retention time.Duration
}

func NewStore(host string, port int, password string, db int, retention time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis cache store initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Store{client: client, retention: retention}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, url string) (*cache.Entry, bool, error) {
	data, err := s.client.Get(ctx, key(url)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	logger.Debug("Persistent cache hit", zap.String("url", url))
	return &entry, true, nil
}

func (s *Store) Set(ctx context.Context, url string, entry *cache.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := s.client.Set(ctx, key(url), data, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, url string) error {
	if err := s.client.Del(ctx, key(url)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func key(url string) string {
	return utils.HashKey("page", url)
}
