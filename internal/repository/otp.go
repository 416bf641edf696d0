package repository

import (
	"context"

	"github.com/openpress/blogcms/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OtpRepository stores the per-email OTP row. Save rewrites the whole row so
// UpdatedAt always reflects the last state transition; the expiry windows
// and daily resets are measured against it.
type OtpRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOtpRepository(db *gorm.DB, logger *zap.Logger) *OtpRepository {
	return &OtpRepository{db: db, logger: logger}
}

func (r *OtpRepository) GetByEmail(ctx context.Context, email string) (*model.Otp, error) {
	var otp model.Otp
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OtpRepository) Create(ctx context.Context, otp *model.Otp) error {
	if err := r.db.WithContext(ctx).Create(otp).Error; err != nil {
		r.logger.Error("Failed to create otp row",
			zap.String("email", otp.Email),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *OtpRepository) Save(ctx context.Context, otp *model.Otp) error {
	if err := r.db.WithContext(ctx).Save(otp).Error; err != nil {
		r.logger.Error("Failed to save otp row",
			zap.String("email", otp.Email),
			zap.Error(err),
		)
		return err
	}
	return nil
}
