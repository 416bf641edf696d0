package model

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name            string `gorm:"column:name;not null"`
	AuthorName      string `gorm:"column:author_name"`
	Phone           string `gorm:"column:phone"`
	Email           string `gorm:"column:email;unique;not null"`
	Password        string `gorm:"column:password;not null"`
	Role            string `gorm:"column:role;default:READER;not null"`
	Status          string `gorm:"column:status;default:ACTIVE;not null"`
	ErrorLoginCount int    `gorm:"column:error_login_count;default:0;not null"`
	// RandToken holds the last-issued refresh token so a stolen token can be
	// invalidated server side.
	RandToken string `gorm:"column:rand_token"`
	ImageURL  string `gorm:"column:image_url"`

	Posts []Post `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
