package repository

import (
	"errors"
	"time"

	"github.com/wholesale-phone/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cartProductColumns 购物车展示所需的商品字段
var cartProductColumns = []string{
	"id", "name", "sku", "price", "image_url", "stock_quantity", "minimum_order_quantity",
}

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByUserID(userID uint) (*models.Cart, error)
	EnsureForUser(userID uint) (*models.Cart, error)
	ListItems(cartID uint) ([]models.CartItem, error)
	GetItem(cartID, productID uint) (*models.CartItem, error)
	GetItemForUpdate(cartID, productID uint) (*models.CartItem, error)
	AddItemQuantity(cartID, productID uint, quantity int) (*models.CartItem, error)
	SetItemQuantity(itemID uint, quantity int) (int64, error)
	DeleteItem(itemID uint) (int64, error)
	Touch(cartID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByUserID 获取用户购物车，不存在返回 nil
func (r *GormCartRepository) GetByUserID(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// EnsureForUser 创建用户购物车，并发创建时以已存在的记录为准
func (r *GormCartRepository) EnsureForUser(userID uint) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cart).Error
	if err != nil {
		return nil, err
	}
	stored, err := r.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.New("cart not persisted")
	}
	return stored, nil
}

// ListItems 获取购物车项及商品投影
func (r *GormCartRepository) ListItems(cartID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	err := r.db.Preload("Product", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped().Select(cartProductColumns)
	}).Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem 获取购物车中某商品的行
func (r *GormCartRepository) GetItem(cartID, productID uint) (*models.CartItem, error) {
	return r.findItem(r.db, cartID, productID)
}

// GetItemForUpdate 加行锁读取购物车项
func (r *GormCartRepository) GetItemForUpdate(cartID, productID uint) (*models.CartItem, error) {
	return r.findItem(lockForUpdate(r.db), cartID, productID)
}

func (r *GormCartRepository) findItem(query *gorm.DB, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := query.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// AddItemQuantity 原子累加购物车项数量，不存在则创建
func (r *GormCartRepository) AddItemQuantity(cartID, productID uint, quantity int) (*models.CartItem, error) {
	if cartID == 0 || productID == 0 || quantity <= 0 {
		return nil, errors.New("invalid cart item params")
	}
	item := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}
	return r.GetItem(cartID, productID)
}

// SetItemQuantity 设置购物车项数量，返回影响行数
func (r *GormCartRepository) SetItemQuantity(itemID uint, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, errors.New("invalid cart item quantity")
	}
	result := r.db.Model(&models.CartItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"quantity": quantity,
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteItem 删除购物车项，返回影响行数
func (r *GormCartRepository) DeleteItem(itemID uint) (int64, error) {
	result := r.db.Delete(&models.CartItem{}, itemID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Touch 刷新购物车更新时间
func (r *GormCartRepository) Touch(cartID uint) error {
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now()).Error
}
