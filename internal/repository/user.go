package repository

import (
	"context"

	"github.com/openpress/blogcms/internal/constants"
	"github.com/openpress/blogcms/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRepository is the gorm-backed persistence layer for accounts.
type UserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserRepository(db *gorm.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.Error("Failed to create user",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// UpdateLoginFailure writes the new failure counter. The write also bumps
// UpdatedAt, which is what anchors the counter to a calendar day.
func (r *UserRepository) UpdateLoginFailure(ctx context.Context, id uint, errorLoginCount int) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("error_login_count", errorLoginCount).Error
}

// FreezeAccount marks the account FREEZE without touching the counter.
func (r *UserRepository) FreezeAccount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("status", constants.StatusFreeze).Error
	if err != nil {
		return err
	}

	r.logger.Warn("Account frozen after repeated login failures",
		zap.Uint("user_id", id),
	)
	return nil
}

// UpdateLoginSuccess clears the failure counter and records the refresh
// token issued for this session.
func (r *UserRepository) UpdateLoginSuccess(ctx context.Context, id uint, refreshToken string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"error_login_count": 0,
			"rand_token":        refreshToken,
		}).Error
}

func (r *UserRepository) UpdatePasswordAndToken(ctx context.Context, id uint, passwordHash, refreshToken string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password":   passwordHash,
			"rand_token": refreshToken,
		}).Error
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("rand_token", "").Error
}

// List returns a page of accounts ordered by creation time, newest first.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the account; owned posts go with it via the cascade.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.logger.Info("User deleted",
		zap.Uint("user_id", id),
	)
	return nil
}
