package model

import (
	"gorm.io/gorm"
)

// Otp is a single row per email, upserted on every request cycle. Count and
// Error are per calendar day; UpdatedAt drives both the daily reset and the
// verification windows.
type Otp struct {
	gorm.Model
	Email         string `gorm:"column:email;unique;not null"`
	OtpHash       string `gorm:"column:otp;not null"`
	RememberToken string `gorm:"column:remember_token;not null"`
	VerifyToken   string `gorm:"column:verify_token"`
	Count         int    `gorm:"column:count;default:1;not null"`
	Error         int    `gorm:"column:error;default:0;not null"`
}
