package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/dto"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/model"
	"github.com/openpress/blogcms/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SiteConfigStore interface {
	Get(ctx context.Context) (*model.SiteConfig, error)
	Update(ctx context.Context, fields map[string]interface{}) error
}

// SiteConfigService serves the editable blocks of the public site. Reads are
// cached; each admin write invalidates the whole siteconfig keyspace.
type SiteConfigService struct {
	store  SiteConfigStore
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSiteConfigService(store SiteConfigStore, cache *redis.Client, cfg config.RedisConfig, logger *zap.Logger) *SiteConfigService {
	return &SiteConfigService{
		store:  store,
		cache:  cache,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}
}

func (s *SiteConfigService) GetHome(ctx context.Context) (*dto.HomeConfigResponse, error) {
	var cached dto.HomeConfigResponse
	if s.cacheGet(ctx, "siteconfig:home", &cached) {
		return &cached, nil
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.HomeConfigResponse{
		HomeTitle:       cfg.HomeTitle,
		HomeDescription: cfg.HomeDescription,
	}
	s.cacheSet(ctx, "siteconfig:home", resp)
	return resp, nil
}

func (s *SiteConfigService) GetAbout(ctx context.Context) (*dto.AboutConfigResponse, error) {
	var cached dto.AboutConfigResponse
	if s.cacheGet(ctx, "siteconfig:about", &cached) {
		return &cached, nil
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.AboutConfigResponse{
		AboutTitle:       cfg.AboutTitle,
		AboutDescription: cfg.AboutDescription,
	}
	s.cacheSet(ctx, "siteconfig:about", resp)
	return resp, nil
}

func (s *SiteConfigService) GetContact(ctx context.Context) (*dto.ContactConfigResponse, error) {
	var cached dto.ContactConfigResponse
	if s.cacheGet(ctx, "siteconfig:contact", &cached) {
		return &cached, nil
	}

	cfg, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ContactConfigResponse{
		ContactEmail:   cfg.ContactEmail,
		ContactPhone:   cfg.ContactPhone,
		ContactAddress: cfg.ContactAddress,
	}
	s.cacheSet(ctx, "siteconfig:contact", resp)
	return resp, nil
}

func (s *SiteConfigService) UpdateHome(ctx context.Context, req *dto.UpdateHomeRequest) error {
	return s.update(ctx, map[string]interface{}{
		"home_title":       req.HomeTitle,
		"home_description": req.HomeDescription,
	})
}

func (s *SiteConfigService) UpdateAbout(ctx context.Context, req *dto.UpdateAboutRequest) error {
	return s.update(ctx, map[string]interface{}{
		"about_title":       req.AboutTitle,
		"about_description": req.AboutDescription,
	})
}

func (s *SiteConfigService) UpdateContact(ctx context.Context, req *dto.UpdateContactRequest) error {
	return s.update(ctx, map[string]interface{}{
		"contact_email":   req.ContactEmail,
		"contact_phone":   req.ContactPhone,
		"contact_address": req.ContactAddress,
	})
}

func (s *SiteConfigService) load(ctx context.Context) (*model.SiteConfig, error) {
	cfg, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return cfg, nil
}

func (s *SiteConfigService) update(ctx context.Context, fields map[string]interface{}) error {
	if err := s.store.Update(ctx, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.cache.DeleteByPattern(ctx, "siteconfig:*"); err != nil {
		s.logger.Warn("Failed to invalidate site config cache",
			zap.Error(err),
		)
	}
	return nil
}

func (s *SiteConfigService) cacheGet(ctx context.Context, key string, out any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *SiteConfigService) cacheSet(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, s.ttl)
}
