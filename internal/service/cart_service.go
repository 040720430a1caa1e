package service

import (
	"context"
	"time"

	"github.com/wholesale-phone/internal/cache"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/queue"
	"github.com/wholesale-phone/internal/repository"
)

// StockAlertPublisher 低库存提醒投递
type StockAlertPublisher interface {
	EnqueueProductLowStock(payload queue.ProductLowStockPayload) error
}

// CartProductView 购物车项中的商品投影
type CartProductView struct {
	ID                   uint         `json:"id"`
	Name                 string       `json:"name"`
	SKU                  string       `json:"sku"`
	Price                models.Money `json:"price"`
	ImageURL             string       `json:"image_url"`
	StockQuantity        int          `json:"stock_quantity"`
	MinimumOrderQuantity int          `json:"minimum_order_quantity"`
}

// CartItemView 购物车项（用于响应）
type CartItemView struct {
	ID        uint             `json:"id"`
	CartID    uint             `json:"cart_id"`
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Product   *CartProductView `json:"product"`
}

// CartView 购物车（用于响应），尚未创建购物车时 ID 为 nil
type CartView struct {
	ID        *uint          `json:"id"`
	UserID    uint           `json:"user_id"`
	Items     []CartItemView `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AddToCartResult 加购结果
type AddToCartResult struct {
	CartID   uint            `json:"cart_id"`
	CartItem models.CartItem `json:"cart_item"`
}

// UpdateCartItemResult 修改购物车项结果，Removed 为 true 时 CartItem 为 nil
type UpdateCartItemResult struct {
	CartID   uint             `json:"cart_id"`
	CartItem *models.CartItem `json:"cart_item"`
	Removed  bool             `json:"removed"`
}

// CartService 购物车服务
type CartService struct {
	store             *repository.Store
	cache             *cache.Client
	alerts            StockAlertPublisher
	lowStockThreshold int
}

// NewCartService 创建购物车服务
func NewCartService(store *repository.Store, cacheClient *cache.Client, alerts StockAlertPublisher, lowStockThreshold int) *CartService {
	return &CartService{
		store:             store,
		cache:             cacheClient,
		alerts:            alerts,
		lowStockThreshold: lowStockThreshold,
	}
}

// stockChange 事务提交后需要处理的库存变化
type stockChange struct {
	product   models.Product
	remaining int
}

// AddToCart 加购：校验用户、商品、起订量与库存后，在同一事务内累加购物车项并扣减库存
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*AddToCartResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var result AddToCartResult
	var change stockChange
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		cart, err := tx.Carts.GetByUserID(userID)
		if err != nil {
			return err
		}
		if cart == nil {
			user, err := tx.Users.GetByID(userID)
			if err != nil {
				return err
			}
			if user == nil {
				return ErrUserNotFound
			}
			if cart, err = tx.Carts.EnsureForUser(userID); err != nil {
				return err
			}
		}

		product, err := tx.Products.GetByIDForUpdate(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
		// 每次请求的数量都需满足起订量，不按累计数量判断
		if quantity < product.MinimumOrderQuantity {
			return newMinimumOrderError(product.Name, product.MinimumOrderQuantity)
		}
		if quantity > product.StockQuantity {
			return newInsufficientStockError(product.Name, product.StockQuantity)
		}

		affected, err := tx.Products.DecrementStock(product.ID, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return s.staleStockError(tx, product)
		}
		item, err := tx.Carts.AddItemQuantity(cart.ID, product.ID, quantity)
		if err != nil {
			return err
		}
		if err := tx.Carts.Touch(cart.ID); err != nil {
			return err
		}

		result = AddToCartResult{CartID: cart.ID, CartItem: *item}
		change = stockChange{product: *product, remaining: product.StockQuantity - quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("cart_item_added",
		"user_id", userID,
		"cart_id", result.CartID,
		"product_id", productID,
		"quantity", quantity,
		"line_quantity", result.CartItem.Quantity,
	)
	s.afterStockChange(ctx, change)
	return &result, nil
}

// GetCart 获取用户购物车，不存在时返回空购物车
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	store := s.store.WithContext(ctx)
	cart, err := store.Carts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		now := time.Now()
		return &CartView{
			UserID:    userID,
			Items:     []CartItemView{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}

	items, err := store.Carts.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	cartID := cart.ID
	view := &CartView{
		ID:        &cartID,
		UserID:    cart.UserID,
		Items:     make([]CartItemView, 0, len(items)),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range items {
		view.Items = append(view.Items, toCartItemView(item))
	}
	return view, nil
}

// UpdateItem 设置购物车项数量；quantity <= 0 时删除该行并归还库存
// 加锁顺序与加购一致：先商品行，后购物车项
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uint, quantity int) (*UpdateCartItemResult, error) {
	var result UpdateCartItemResult
	var change *stockChange
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		cart, err := tx.Carts.GetByUserID(userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrCartItemNotFound
		}
		product, err := tx.Products.GetByIDForUpdate(productID)
		if err != nil {
			return err
		}
		item, err := tx.Carts.GetItemForUpdate(cart.ID, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrCartItemNotFound
		}
		result.CartID = cart.ID

		if quantity <= 0 {
			affected, err := tx.Carts.DeleteItem(item.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrCartItemNotFound
			}
			if _, err := tx.Products.IncrementStock(productID, item.Quantity); err != nil {
				return err
			}
			result.Removed = true
			if product != nil {
				change = &stockChange{product: *product, remaining: product.StockQuantity + item.Quantity}
			}
			return tx.Carts.Touch(cart.ID)
		}

		if product == nil {
			return ErrProductNotFound
		}
		if quantity < product.MinimumOrderQuantity {
			return newMinimumOrderError(product.Name, product.MinimumOrderQuantity)
		}
		delta := quantity - item.Quantity
		if delta != 0 {
			affected, err := tx.Carts.SetItemQuantity(item.ID, quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrCartItemNotFound
			}
		}
		switch {
		case delta > 0:
			if delta > product.StockQuantity {
				return newInsufficientStockError(product.Name, product.StockQuantity)
			}
			affected, err := tx.Products.DecrementStock(product.ID, delta)
			if err != nil {
				return err
			}
			if affected == 0 {
				return s.staleStockError(tx, product)
			}
		case delta < 0:
			if _, err := tx.Products.IncrementStock(product.ID, -delta); err != nil {
				return err
			}
		}
		if delta != 0 {
			if err := tx.Carts.Touch(cart.ID); err != nil {
				return err
			}
			change = &stockChange{product: *product, remaining: product.StockQuantity - delta}
		}
		updated, err := tx.Carts.GetItem(cart.ID, productID)
		if err != nil {
			return err
		}
		result.CartItem = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Infow("cart_item_updated",
		"user_id", userID,
		"cart_id", result.CartID,
		"product_id", productID,
		"quantity", quantity,
		"removed", result.Removed,
	)
	if change != nil {
		s.afterStockChange(ctx, *change)
	}
	return &result, nil
}

// RemoveItem 删除购物车项并归还库存
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) (*UpdateCartItemResult, error) {
	return s.UpdateItem(ctx, userID, productID, 0)
}

// staleStockError 条件扣减未命中时按最新库存生成错误
func (s *CartService) staleStockError(tx *repository.Store, product *models.Product) error {
	available := 0
	current, err := tx.Products.GetByID(product.ID)
	if err != nil {
		return err
	}
	if current != nil {
		available = current.StockQuantity
	}
	return newInsufficientStockError(product.Name, available)
}

func (s *CartService) afterStockChange(ctx context.Context, change stockChange) {
	product := change.product
	if err := s.cache.InvalidateProduct(ctx, product.Slug, product.Name); err != nil {
		logger.FromContext(ctx).Warnw("cart_product_cache_invalidate_failed", "product_id", product.ID, "error", err)
	}
	if s.alerts == nil || change.remaining > s.lowStockThreshold {
		return
	}
	payload := queue.ProductLowStockPayload{
		ProductID:     product.ID,
		SKU:           product.SKU,
		Name:          product.Name,
		Slug:          product.Slug,
		StockQuantity: change.remaining,
	}
	if err := s.alerts.EnqueueProductLowStock(payload); err != nil {
		logger.FromContext(ctx).Warnw("cart_low_stock_enqueue_failed", "product_id", product.ID, "error", err)
	}
}

func toCartItemView(item models.CartItem) CartItemView {
	view := CartItemView{
		ID:        item.ID,
		CartID:    item.CartID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.Product != nil {
		view.Product = &CartProductView{
			ID:                   item.Product.ID,
			Name:                 item.Product.Name,
			SKU:                  item.Product.SKU,
			Price:                item.Product.Price,
			ImageURL:             item.Product.ImageURL,
			StockQuantity:        item.Product.StockQuantity,
			MinimumOrderQuantity: item.Product.MinimumOrderQuantity,
		}
	}
	return view
}
