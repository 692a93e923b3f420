package repository

import (
	"context"
	"errors"
	"stibap_portal/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormKVRepository struct {
	DB     *gorm.DB
	Prefix string
}

func NewGormKVRepository(db *gorm.DB, prefix string) *GormKVRepository {
	return &GormKVRepository{DB: db, Prefix: prefix}
}

func (r *GormKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := r.DB.WithContext(ctx).Where(&model.KVEntry{Key: r.Prefix + key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *GormKVRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	entry := model.KVEntry{Key: r.Prefix + key, Value: value, UpdatedAt: time.Now()}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (r *GormKVRepository) Delete(ctx context.Context, key string) error {
	return r.DB.WithContext(ctx).Delete(&model.KVEntry{Key: r.Prefix + key}).Error
}
