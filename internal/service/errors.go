package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 通用资源不存在
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound 创建购物车时用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCartItemNotFound 购物车项不存在
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrInvalidQuantity 数量非法
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrBelowMinimumOrder 低于起订量
	ErrBelowMinimumOrder = errors.New("below minimum order quantity")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidProductInput 商品参数非法
	ErrInvalidProductInput = errors.New("invalid product input")
	// ErrInvalidCategoryInput 分类参数非法
	ErrInvalidCategoryInput = errors.New("invalid category input")
	// ErrSKUExists SKU 已存在
	ErrSKUExists = errors.New("sku already exists")
	// ErrInvalidEmail 邮箱格式错误
	ErrInvalidEmail = errors.New("invalid email")
	// ErrWeakPassword 密码不符合策略
	ErrWeakPassword = errors.New("weak password")
	// ErrEmailExists 邮箱已注册
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDisabled 账号已停用
	ErrUserDisabled = errors.New("user disabled")
	// ErrSessionInvalid 会话无效或已失效
	ErrSessionInvalid = errors.New("session invalid")
)

// CartRuleError 购物车业务规则错误，携带商品名与限制值
type CartRuleError struct {
	Kind        error
	ProductName string
	Limit       int
}

func newMinimumOrderError(productName string, minimum int) *CartRuleError {
	return &CartRuleError{Kind: ErrBelowMinimumOrder, ProductName: productName, Limit: minimum}
}

func newInsufficientStockError(productName string, available int) *CartRuleError {
	if available < 0 {
		available = 0
	}
	return &CartRuleError{Kind: ErrInsufficientStock, ProductName: productName, Limit: available}
}

func (e *CartRuleError) Error() string {
	return fmt.Sprintf("%v: product=%q limit=%d", e.Kind, e.ProductName, e.Limit)
}

// Unwrap 支持 errors.Is 判断错误类别
func (e *CartRuleError) Unwrap() error {
	return e.Kind
}

// Message 面向调用方的提示
func (e *CartRuleError) Message() string {
	switch e.Kind {
	case ErrBelowMinimumOrder:
		return fmt.Sprintf("Minimum order quantity for %s is %d.", e.ProductName, e.Limit)
	case ErrInsufficientStock:
		return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.ProductName, e.Limit)
	default:
		return e.Error()
	}
}
