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

type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
}

type CategoryService struct {
	categories CategoryStore
	logger     *zap.Logger
}

func NewCategoryService(categories CategoryStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.CategoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (uint, error) {
	existing, err := s.categories.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		return 0, apperrors.NewDomainError(apperrors.CodeInvalid,
			"This category already exists", 400)
	}

	category := &model.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", name),
	)
	return category.ID, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, name string) error {
	if err := s.categories.Update(ctx, id, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.logger.Info("Category deleted",
		zap.Uint("category_id", id),
	)
	return nil
}
