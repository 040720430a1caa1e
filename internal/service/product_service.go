package service

import (
	"context"
	"strings"
	"time"

	"github.com/wholesale-phone/internal/cache"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	store    *repository.Store
	cache    *cache.Client
	cacheTTL time.Duration
}

// NewProductService 创建商品服务
func NewProductService(store *repository.Store, cacheClient *cache.Client, cacheTTL time.Duration) *ProductService {
	return &ProductService{store: store, cache: cacheClient, cacheTTL: cacheTTL}
}

// ProductInput 创建/更新商品输入，更新时按 SKU 定位并整体覆盖
type ProductInput struct {
	SKU                  string
	Slug                 string
	Name                 string
	Description          string
	ImageURL             string
	Price                decimal.Decimal
	StockQuantity        int
	MinimumOrderQuantity int
	IsFeatured           bool
	IsActive             bool
	CategoryID           uint
	CreatedByUserID      *uint
}

func (in *ProductInput) normalize() error {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.SKU == "" || in.Slug == "" || in.Name == "" || in.CategoryID == 0 {
		return ErrInvalidProductInput
	}
	if in.Price.IsNegative() || in.StockQuantity < 0 || in.MinimumOrderQuantity < 1 {
		return ErrInvalidProductInput
	}
	return nil
}

func (in ProductInput) applyTo(product *models.Product) {
	product.SKU = in.SKU
	product.Slug = in.Slug
	product.Name = in.Name
	product.Description = in.Description
	product.ImageURL = in.ImageURL
	product.Price = models.NewMoneyFromDecimal(in.Price)
	product.StockQuantity = in.StockQuantity
	product.MinimumOrderQuantity = in.MinimumOrderQuantity
	product.IsFeatured = in.IsFeatured
	product.IsActive = in.IsActive
	product.CategoryID = in.CategoryID
}

// List 按组合条件查询商品
func (s *ProductService) List(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.store.WithContext(ctx).Products.List(filter)
}

// AdminList 管理端商品列表，按创建时间倒序
func (s *ProductService) AdminList(ctx context.Context) ([]models.Product, error) {
	products, _, err := s.store.WithContext(ctx).Products.List(repository.ProductListFilter{
		WithCategory: true,
		NewestFirst:  true,
	})
	return products, err
}

// GetBySlug 按 slug 或名称查找商品，未找到返回 nil
func (s *ProductService) GetBySlug(ctx context.Context, identifier string) (*models.Product, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	var cached models.Product
	if hit, err := s.cache.GetJSON(ctx, cache.ProductKey(identifier), &cached); err != nil {
		logger.FromContext(ctx).Debugw("catalog_product_cache_get_failed", "identifier", identifier, "error", err)
	} else if hit {
		return &cached, nil
	}

	product, err := s.store.WithContext(ctx).Products.GetBySlugOrName(identifier)
	if err != nil || product == nil {
		return product, err
	}
	if err := s.cache.SetJSON(ctx, cache.ProductKey(identifier), product, s.cacheTTL); err != nil {
		logger.FromContext(ctx).Debugw("catalog_product_cache_set_failed", "identifier", identifier, "error", err)
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	store := s.store.WithContext(ctx)
	if err := s.ensureCategory(store, input.CategoryID); err != nil {
		return nil, err
	}
	existing, err := store.Products.GetBySKU(input.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSKUExists
	}

	product := &models.Product{CreatedByUserID: input.CreatedByUserID}
	input.applyTo(product)
	if err := store.Products.Create(product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product.Slug, product.Name)
	logger.FromContext(ctx).Infow("catalog_product_created", "product_id", product.ID, "sku", product.SKU)
	return product, nil
}

// Update 按 SKU 整体覆盖商品字段
func (s *ProductService) Update(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	store := s.store.WithContext(ctx)
	product, err := store.Products.GetBySKU(input.SKU)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.ensureCategory(store, input.CategoryID); err != nil {
		return nil, err
	}

	oldSlug, oldName := product.Slug, product.Name
	input.applyTo(product)
	if err := store.Products.Update(product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldSlug, oldName)
	s.invalidate(ctx, product.Slug, product.Name)
	logger.FromContext(ctx).Infow("catalog_product_updated", "product_id", product.ID, "sku", product.SKU)
	return product, nil
}

func (s *ProductService) ensureCategory(store *repository.Store, categoryID uint) error {
	category, err := store.Categories.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, slug, name string) {
	if err := s.cache.InvalidateProduct(ctx, slug, name); err != nil {
		logger.FromContext(ctx).Warnw("catalog_product_cache_invalidate_failed", "slug", slug, "error", err)
	}
}
