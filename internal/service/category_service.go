package service

import (
	"context"
	"strings"
	"time"

	"github.com/wholesale-phone/internal/cache"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	store    *repository.Store
	cache    *cache.Client
	cacheTTL time.Duration
}

// NewCategoryService 创建分类服务
func NewCategoryService(store *repository.Store, cacheClient *cache.Client, cacheTTL time.Duration) *CategoryService {
	return &CategoryService{store: store, cache: cacheClient, cacheTTL: cacheTTL}
}

// UpsertCategoryInput 分类写入输入
type UpsertCategoryInput struct {
	Slug        string
	Name        string
	Description string
}

// List 获取分类列表
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if hit, err := s.cache.GetJSON(ctx, cache.CategoriesKey(), &categories); err == nil && hit {
		return categories, nil
	}
	categories, err := s.store.WithContext(ctx).Categories.List()
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, cache.CategoriesKey(), categories, s.cacheTTL); err != nil {
		logger.FromContext(ctx).Debugw("catalog_categories_cache_set_failed", "error", err)
	}
	return categories, nil
}

// Upsert 按 slug 创建或更新分类
func (s *CategoryService) Upsert(ctx context.Context, input UpsertCategoryInput) (*models.Category, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	name := strings.TrimSpace(input.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidCategoryInput
	}
	category := &models.Category{
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.store.WithContext(ctx).Categories.UpsertBySlug(category); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		logger.FromContext(ctx).Warnw("catalog_categories_cache_invalidate_failed", "error", err)
	}
	return category, nil
}
