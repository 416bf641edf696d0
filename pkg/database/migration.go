package database

import (
	"github.com/openpress/blogcms/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Otp{},
		&model.Category{},
		&model.Tag{},
		&model.Post{},
		&model.PostSection{},
		&model.SiteConfig{},
	)
}
