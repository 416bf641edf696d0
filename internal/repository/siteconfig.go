package repository

import (
	"context"

	"github.com/openpress/blogcms/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SiteConfigRepository reads and updates the single site configuration row.
type SiteConfigRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSiteConfigRepository(db *gorm.DB, logger *zap.Logger) *SiteConfigRepository {
	return &SiteConfigRepository{db: db, logger: logger}
}

func (r *SiteConfigRepository) Get(ctx context.Context) (*model.SiteConfig, error) {
	var cfg model.SiteConfig
	if err := r.db.WithContext(ctx).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *SiteConfigRepository) Update(ctx context.Context, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	var cfg model.SiteConfig
	if err := r.db.WithContext(ctx).First(&cfg).Error; err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Model(&cfg).Updates(fields).Error; err != nil {
		r.logger.Error("Failed to update site config",
			zap.Error(err),
		)
		return err
	}
	return nil
}
