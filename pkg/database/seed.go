package database

import (
	"github.com/openpress/blogcms/internal/constants"
	"github.com/openpress/blogcms/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultAdmin defines the default admin user credentials
type DefaultAdmin struct {
	Name     string
	Email    string
	Password string
}

// GetDefaultAdmin returns the default admin user
func GetDefaultAdmin() DefaultAdmin {
	return DefaultAdmin{
		Name:     "Admin",
		Email:    "admin@blog.local",
		Password: "Admin@123", // Change this in production!
	}
}

// Seed creates initial data for the database
func Seed(db *gorm.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedSiteConfig(db)
}

func seedAdmin(db *gorm.DB) error {
	admin := GetDefaultAdmin()

	var existingUser model.User
	result := db.Where("email = ?", admin.Email).First(&existingUser)
	if result.Error == nil {
		return nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Name:     admin.Name,
		Email:    admin.Email,
		Password: string(hashedPassword),
		Role:     constants.RoleAdmin,
		Status:   constants.StatusActive,
	}

	return db.Create(&user).Error
}

// seedSiteConfig guarantees the single config row exists so admin updates
// always have a target.
func seedSiteConfig(db *gorm.DB) error {
	var cfg model.SiteConfig
	result := db.First(&cfg)
	if result.Error == nil {
		return nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}

	return db.Create(&model.SiteConfig{
		HomeTitle:       "Welcome",
		HomeDescription: "Server is running.",
	}).Error
}
