package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/dto"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostStore is the persistence surface for posts.
type PostStore interface {
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	Create(ctx context.Context, post *model.Post, categoryIDs []uint, tags []model.Tag) error
	Update(ctx context.Context, post *model.Post, sections []model.PostSection, categoryIDs []uint, tags []model.Tag) error
	Delete(ctx context.Context, id uint) error
	ListPage(ctx context.Context, offset, limit int, categoryID uint) ([]model.Post, int64, error)
	ListAfterCursor(ctx context.Context, cursor uint, limit int) ([]model.Post, error)
	Random(ctx context.Context, n int) ([]model.Post, error)
	CountBySlugPrefix(ctx context.Context, prefix string) (int64, error)
}

const randomPostCount = 3

// PostService implements post CRUD for admins plus the public read surface.
// Read endpoints go through the Redis cache; every admin write invalidates
// the whole post keyspace.
type PostService struct {
	posts  PostStore
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewPostService(posts PostStore, cache *redis.Client, cfg config.RedisConfig, logger *zap.Logger) *PostService {
	return &PostService{
		posts:  posts,
		cache:  cache,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}
}

func (s *PostService) Create(ctx context.Context, authorID uint, req *dto.CreatePostRequest) (uint, error) {
	slug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	post := &model.Post{
		Title:       req.Title,
		Slug:        slug,
		Type:        req.Type,
		MainContent: req.MainContent,
		CoverURL:    req.CoverURL,
		CoverKey:    req.CoverKey,
		AuthorID:    authorID,
		Sections:    buildSections(req.Sections),
	}

	if err := s.posts.Create(ctx, post, req.Categories, buildTags(req.Tags)); err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidate(ctx)

	s.logger.Info("Post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("author_id", authorID),
		zap.String("slug", slug),
	)

	return post.ID, nil
}

func (s *PostService) Update(ctx context.Context, req *dto.UpdatePostRequest) error {
	post, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if req.Title != post.Title {
		slug, err := s.uniqueSlug(ctx, req.Title)
		if err != nil {
			return apperrors.WrapError(apperrors.ErrInternal, err)
		}
		post.Slug = slug
	}

	post.Title = req.Title
	post.Type = req.Type
	post.MainContent = req.MainContent
	post.CoverURL = req.CoverURL
	post.CoverKey = req.CoverKey

	if err := s.posts.Update(ctx, post, buildSections(req.Sections), req.Categories, buildTags(req.Tags)); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *PostService) Delete(ctx context.Context, postID uint) error {
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*dto.PostDetailResponse, error) {
	cacheKey := fmt.Sprintf("posts:slug:%s", slug)
	var cached dto.PostDetailResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := toPostDetail(post)
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

func (s *PostService) ListPage(ctx context.Context, page, limit int, categoryID uint) (*dto.PostPageResponse, error) {
	cacheKey := fmt.Sprintf("posts:page:%d:%d:%d", page, limit, categoryID)
	var cached dto.PostPageResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	offset := (page - 1) * limit
	posts, total, err := s.posts.ListPage(ctx, offset, limit, categoryID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	resp := &dto.PostPageResponse{
		Message:     "Posts fetched successfully",
		Posts:       toPostSummaries(posts),
		HasNextPage: page < totalPages,
		TotalCount:  total,
		TotalPages:  totalPages,
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

func (s *PostService) ListCursor(ctx context.Context, cursor uint, limit int) (*dto.PostCursorPageResponse, error) {
	cacheKey := fmt.Sprintf("posts:cursor:%d:%d", cursor, limit)
	var cached dto.PostCursorPageResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	// Fetch one extra row to learn whether another page exists.
	posts, err := s.posts.ListAfterCursor(ctx, cursor, limit+1)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	var nextCursor uint
	if len(posts) > 0 {
		nextCursor = posts[len(posts)-1].ID
	}

	resp := &dto.PostCursorPageResponse{
		Message:    "Posts fetched successfully",
		Posts:      toPostSummaries(posts),
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}
	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

// Random returns a few posts for the suggestion rail; never cached so the
// selection actually rotates.
func (s *PostService) Random(ctx context.Context) ([]dto.RandomPostResponse, error) {
	posts, err := s.posts.Random(ctx, randomPostCount)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	resp := make([]dto.RandomPostResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, dto.RandomPostResponse{
			ID:          p.ID,
			Slug:        p.Slug,
			Title:       p.Title,
			MainContent: p.MainContent,
			CoverURL:    p.CoverURL,
		})
	}
	return resp, nil
}

func (s *PostService) cacheGet(ctx context.Context, key string, out any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *PostService) cacheSet(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, s.ttl)
}

func (s *PostService) invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, "posts:*"); err != nil {
		s.logger.Warn("Failed to invalidate post cache",
			zap.Error(err),
		)
	}
}

// uniqueSlug slugifies the title and appends a numeric suffix when the base
// slug is already taken.
func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slugify(title)
	count, err := s.posts.CountBySlugPrefix(ctx, base)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, count), nil
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func buildSections(inputs []dto.SectionInput) []model.PostSection {
	sections := make([]model.PostSection, 0, len(inputs))
	for i, in := range inputs {
		sections = append(sections, model.PostSection{
			Content:   in.Content,
			ImageURL:  in.ImageURL,
			ImageKey:  in.ImageKey,
			SortOrder: i,
		})
	}
	return sections
}

func buildTags(names []string) []model.Tag {
	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tags = append(tags, model.Tag{Name: name, Slug: slugify(name)})
	}
	return tags
}

func toPostSummaries(posts []model.Post) []dto.PostSummaryResponse {
	out := make([]dto.PostSummaryResponse, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		out = append(out, dto.PostSummaryResponse{
			ID:         p.ID,
			Title:      p.Title,
			Author:     authorName(&p.Author),
			Sections:   toSectionResponses(p.Sections),
			Categories: categoryNames(p.Categories),
			Tags:       tagNames(p.Tags),
			UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func toPostDetail(p *model.Post) *dto.PostDetailResponse {
	return &dto.PostDetailResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		MainContent: p.MainContent,
		CoverURL:    p.CoverURL,
		Name:        p.Author.Name,
		Author:      authorName(&p.Author),
		Sections:    toSectionResponses(p.Sections),
		Categories:  categoryNames(p.Categories),
		Tags:        tagNames(p.Tags),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toSectionResponses(sections []model.PostSection) []dto.SectionResponse {
	out := make([]dto.SectionResponse, 0, len(sections))
	for _, s := range sections {
		out = append(out, dto.SectionResponse{
			ID:       s.ID,
			Content:  s.Content,
			ImageURL: s.ImageURL,
			Order:    s.SortOrder,
		})
	}
	return out
}

func categoryNames(categories []model.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Name)
	}
	return out
}

func tagNames(tags []model.Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

// authorName prefers the public pen name over the account name.
func authorName(u *model.User) string {
	if u.AuthorName != "" {
		return u.AuthorName
	}
	return u.Name
}
