package repositories

import (
	"context"
	"errors"
)

// KeyPrefix is the fixed namespace under which resume records live.
// Composing it with the record id yields the storage key, which makes
// all records discoverable by prefix listing.
const KeyPrefix = "resume:"

func RecordKey(id string) string {
	return KeyPrefix + id
}

var ErrRecordNotFound = errors.New("record not found")

// Item is a single (key, value) pair returned by prefix listing. The
// value is the opaque serialized record; callers own the encoding.
type Item struct {
	Key   string
	Value string
}

// RecordStore is the namespaced key/value store the pipeline persists
// resume records to. Implementations: redis (primary), postgres via a KV
// table, and an in-memory store used by tests.
type RecordStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	List(ctx context.Context, prefix string) ([]Item, error)
}
