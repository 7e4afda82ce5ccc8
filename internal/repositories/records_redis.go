package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

type redisRecordStore struct {
	client *redis.Client
}

func NewRedisRecordStore(client *redis.Client) RecordStore {
	return &redisRecordStore{client: client}
}

// Set implements RecordStore. Records carry no TTL; there is no deletion
// path in this system.
func (s *redisRecordStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set record %q: %w", key, err)
	}
	return nil
}

// Get implements RecordStore.
func (s *redisRecordStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrRecordNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get record %q: %w", key, err)
	}
	return value, nil
}

// List implements RecordStore. SCAN is cursor-based and may return keys
// in any order across pages, so keys are sorted before the values are
// fetched to keep listings deterministic.
func (s *redisRecordStore) List(ctx context.Context, prefix string) ([]Item, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan records: %w", err)
	}
	if len(keys) == 0 {
		return []Item{}, nil
	}
	sort.Strings(keys)

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch record values: %w", err)
	}

	items := make([]Item, 0, len(keys))
	for i, key := range keys {
		// A key can expire between SCAN and MGET.
		value, ok := values[i].(string)
		if !ok {
			continue
		}
		items = append(items, Item{Key: key, Value: value})
	}
	return items, nil
}
