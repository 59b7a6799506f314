package repository

import (
	"context"

	"github.com/fadilmartias/interview-coach/internal/model"
	"gorm.io/gorm"
)

type QueryCacheRepository struct {
	db *gorm.DB
}

func NewQueryCacheRepository(db *gorm.DB) *QueryCacheRepository {
	return &QueryCacheRepository{db}
}

func (r *QueryCacheRepository) Create(ctx context.Context, entry *model.QueryCache) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
