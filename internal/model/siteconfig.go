package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SiteConfig is a single-row table (id 1) holding the editable blocks of the
// public site.
type SiteConfig struct {
	gorm.Model
	HomeTitle        string         `gorm:"column:home_title"`
	HomeDescription  string         `gorm:"column:home_description;type:text"`
	AboutTitle       string         `gorm:"column:about_title"`
	AboutDescription string         `gorm:"column:about_description;type:text"`
	ContactEmail     string         `gorm:"column:contact_email"`
	ContactPhone     string         `gorm:"column:contact_phone"`
	ContactAddress   string         `gorm:"column:contact_address"`
	SocialLinks      datatypes.JSON `gorm:"column:social_links"`
}
