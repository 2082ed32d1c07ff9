package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/storefront-session-gateway/internal/domain"
)

// RedisInventoryCacheStore keys entries under a global epoch so that
// InvalidateAll is a single INCR instead of a key scan.
type RedisInventoryCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisInventoryCacheStore(client redis.UniversalClient, prefix string) *RedisInventoryCacheStore {
	if prefix == "" {
		prefix = "inventory"
	}
	return &RedisInventoryCacheStore{client: client, prefix: prefix}
}

func (s *RedisInventoryCacheStore) Get(ctx context.Context, storeID string) ([]domain.InventoryItem, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	key, err := s.dataKey(ctx, storeID)
	if err != nil {
		return nil, false, err
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []domain.InventoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *RedisInventoryCacheStore) Set(ctx context.Context, storeID string, items []domain.InventoryItem, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	key, err := s.dataKey(ctx, storeID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, ttl).Err()
}

func (s *RedisInventoryCacheStore) Invalidate(ctx context.Context, storeID string) error {
	if s.client == nil {
		return nil
	}
	key, err := s.dataKey(ctx, storeID)
	if err != nil {
		return err
	}
	return s.client.Del(ctx, key).Err()
}

func (s *RedisInventoryCacheStore) InvalidateAll(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Incr(ctx, s.epochKey()).Err()
}

func (s *RedisInventoryCacheStore) dataKey(ctx context.Context, storeID string) (string, error) {
	epoch, err := s.currentEpoch(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:g%d:store:%s", s.prefix, epoch, storeID), nil
}

func (s *RedisInventoryCacheStore) currentEpoch(ctx context.Context) (uint64, error) {
	v, err := s.client.Get(ctx, s.epochKey()).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *RedisInventoryCacheStore) epochKey() string {
	return s.prefix + ":epoch:global"
}
