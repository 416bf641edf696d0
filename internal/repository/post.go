package repository

import (
	"context"

	"github.com/openpress/blogcms/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostRepository handles posts together with their sections, categories and
// tags. Multi-row writes run inside a transaction so a post never lands
// half-written.
type PostRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPostRepository(db *gorm.DB, logger *zap.Logger) *PostRepository {
	return &PostRepository{db: db, logger: logger}
}

func (r *PostRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Categories").
		Preload("Tags").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Categories").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Create persists the post, its sections, and the category/tag links in one
// transaction.
func (r *PostRepository) Create(ctx context.Context, post *model.Post, categoryIDs []uint, tags []model.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if err := replacePostCategories(tx, post, categoryIDs); err != nil {
			return err
		}
		return replacePostTags(tx, post, tags)
	})
	if err != nil {
		r.logger.Error("Failed to create post",
			zap.String("title", post.Title),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Update rewrites the post row, replaces its sections wholesale, and resets
// the category/tag links.
func (r *PostRepository) Update(ctx context.Context, post *model.Post, sections []model.PostSection, categoryIDs []uint, tags []model.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Updates(map[string]interface{}{
			"title":        post.Title,
			"slug":         post.Slug,
			"type":         post.Type,
			"main_content": post.MainContent,
			"cover_url":    post.CoverURL,
			"cover_key":    post.CoverKey,
		}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("post_id = ?", post.ID).Delete(&model.PostSection{}).Error; err != nil {
			return err
		}
		for i := range sections {
			sections[i].PostID = post.ID
		}
		if len(sections) > 0 {
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}

		if err := replacePostCategories(tx, post, categoryIDs); err != nil {
			return err
		}
		return replacePostTags(tx, post, tags)
	})
	if err != nil {
		r.logger.Error("Failed to update post",
			zap.Uint("post_id", post.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&model.PostSection{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&post).Error
	})
	if err != nil {
		return err
	}

	r.logger.Info("Post deleted",
		zap.Uint("post_id", id),
	)
	return nil
}

// ListPage returns an offset page ordered newest first, plus the total count
// for page math.
func (r *PostRepository) ListPage(ctx context.Context, offset, limit int, categoryID uint) ([]model.Post, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Post{})
	if categoryID != 0 {
		base = base.Joins("JOIN post_categories pc ON pc.post_id = posts.id").
			Where("pc.category_id = ?", categoryID)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.Post
	err := base.
		Preload("Author").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Categories").
		Preload("Tags").
		Order("posts.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// ListAfterCursor returns up to limit posts with id greater than cursor, in
// id order. Cursor 0 starts from the beginning.
func (r *PostRepository) ListAfterCursor(ctx context.Context, cursor uint, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Categories").
		Preload("Tags").
		Where("id > ?", cursor).
		Order("id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Random picks n posts at random for the suggestion rail.
func (r *PostRepository) Random(ctx context.Context, n int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Order("RANDOM()").
		Limit(n).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) CountBySlugPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("slug = ? OR slug LIKE ?", prefix, prefix+"-%").
		Count(&count).Error
	return count, err
}

func replacePostCategories(tx *gorm.DB, post *model.Post, categoryIDs []uint) error {
	var categories []model.Category
	if len(categoryIDs) > 0 {
		if err := tx.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return err
		}
	}
	return tx.Model(post).Association("Categories").Replace(categories)
}

// replacePostTags upserts tags by name then relinks them.
func replacePostTags(tx *gorm.DB, post *model.Post, tags []model.Tag) error {
	linked := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		var existing model.Tag
		err := tx.Where("name = ?", tag.Name).First(&existing).Error
		switch {
		case err == nil:
			linked = append(linked, existing)
		case err == gorm.ErrRecordNotFound:
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
			linked = append(linked, tag)
		default:
			return err
		}
	}
	return tx.Model(post).Association("Tags").Replace(linked)
}
