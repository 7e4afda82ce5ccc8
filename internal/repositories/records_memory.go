package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRecordStore is a map-backed RecordStore for tests and local
// development without redis or postgres.
type MemoryRecordStore struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{items: make(map[string]string)}
}

func (s *MemoryRecordStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryRecordStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.items[key]
	if !ok {
		return "", ErrRecordNotFound
	}
	return value, nil
}

func (s *MemoryRecordStore) List(ctx context.Context, prefix string) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, 0)
	for key, value := range s.items {
		if strings.HasPrefix(key, prefix) {
			items = append(items, Item{Key: key, Value: value})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}

// Len reports the number of stored records.
func (s *MemoryRecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
