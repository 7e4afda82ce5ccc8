package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordItem is the KV row backing the postgres record store.
type RecordItem struct {
	Key       string    `gorm:"primaryKey;column:key;type:text"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (RecordItem) TableName() string {
	return "record_items"
}

type gormRecordStore struct {
	db *gorm.DB
}

func NewGormRecordStore(db *gorm.DB) RecordStore {
	return &gormRecordStore{db: db}
}

// Set implements RecordStore. The pipeline overwrites the same key on
// completion, so this is an upsert.
func (s *gormRecordStore) Set(ctx context.Context, key, value string) error {
	item := RecordItem{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to set record %q: %w", key, err)
	}
	return nil
}

// Get implements RecordStore.
func (s *gormRecordStore) Get(ctx context.Context, key string) (string, error) {
	var item RecordItem
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRecordNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get record %q: %w", key, err)
	}
	return item.Value, nil
}

// List implements RecordStore.
func (s *gormRecordStore) List(ctx context.Context, prefix string) ([]Item, error) {
	var rows []RecordItem
	err := s.db.WithContext(ctx).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{Key: row.Key, Value: row.Value})
	}
	return items, nil
}
