package service

import (
	"context"
	"errors"
	"time"

	"github.com/openpress/blogcms/internal/dto"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserAdminStore extends the auth-facing store with the admin and profile
// operations.
type UserAdminStore interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	UpdateRole(ctx context.Context, id uint, role string) error
	UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

// UserService covers the admin user management surface and the
// authenticated user's own profile.
type UserService struct {
	users  UserAdminStore
	logger *zap.Logger
}

func NewUserService(users UserAdminStore, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]dto.UserListItem, int64, error) {
	offset := (page - 1) * limit
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.UserListItem, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserListItem{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			Status:    u.Status,
			UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, total, nil
}

// UpdateRole changes an account's role. An admin cannot change their own
// role, which keeps the last admin from locking everyone out.
func (s *UserService) UpdateRole(ctx context.Context, actorID, targetID uint, role string) error {
	if actorID == targetID {
		return apperrors.ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("User role updated",
		zap.Uint("actor_id", actorID),
		zap.Uint("user_id", targetID),
		zap.String("role", role),
	)
	return nil
}

func (s *UserService) Delete(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return apperrors.ErrForbidden
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return &dto.ProfileResponse{
		Name:       user.Name,
		AuthorName: user.AuthorName,
		Email:      user.Email,
		Role:       user.Role,
		Phone:      user.Phone,
		Image:      user.ImageURL,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// UpdateProfile writes only the fields the request actually carries.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) error {
	fields := make(map[string]interface{})
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.AuthorName != "" {
		fields["author_name"] = req.AuthorName
	}
	if req.Phone != "" {
		fields["phone"] = req.Phone
	}
	if req.ImageURL != "" {
		fields["image_url"] = req.ImageURL
	}
	if len(fields) == 0 {
		return apperrors.ErrInvalidInput
	}

	if err := s.users.UpdateProfile(ctx, userID, fields); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}
