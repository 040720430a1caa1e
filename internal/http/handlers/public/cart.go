package public

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/models"

	"github.com/gin-gonic/gin"
)

// AddToCartRequest 加购请求
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest 修改购物车项请求，quantity <= 0 表示删除
type UpdateCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// RemoveCartItemRequest 删除购物车项请求
type RemoveCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// AddToCartResponse 加购响应
type AddToCartResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	CartID   uint            `json:"cart_id"`
	CartItem models.CartItem `json:"cart_item"`
}

// CartItemMutationResponse 修改/删除购物车项响应
type CartItemMutationResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	CartID   uint             `json:"cart_id"`
	CartItem *models.CartItem `json:"cart_item"`
	Removed  bool             `json:"removed"`
}

// GetCart 获取当前用户购物车
func (h *Handler) GetCart(c *gin.Context) {
	user, ok := requireSessionUser(c)
	if !ok {
		return
	}
	cart, err := h.CartService.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, cart)
}

// AddToCart 加入购物车
func (h *Handler) AddToCart(c *gin.Context) {
	user, ok := requireSessionUser(c)
	if !ok {
		return
	}
	var req AddToCartRequest
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}

	result, err := h.CartService.AddToCart(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		respondMutationError(c, err)
		return
	}
	response.Success(c, AddToCartResponse{
		Success:  true,
		Message:  "Product added to cart successfully!",
		CartID:   result.CartID,
		CartItem: result.CartItem,
	})
}

// UpdateCartItem 设置购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	user, ok := requireSessionUser(c)
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}

	result, err := h.CartService.UpdateItem(c.Request.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		respondMutationError(c, err)
		return
	}
	message := "Cart item updated successfully!"
	if result.Removed {
		message = "Cart item removed successfully!"
	}
	response.Success(c, CartItemMutationResponse{
		Success:  true,
		Message:  message,
		CartID:   result.CartID,
		CartItem: result.CartItem,
		Removed:  result.Removed,
	})
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	user, ok := requireSessionUser(c)
	if !ok {
		return
	}
	var req RemoveCartItemRequest
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}

	result, err := h.CartService.RemoveItem(c.Request.Context(), user.ID, req.ProductID)
	if err != nil {
		respondMutationError(c, err)
		return
	}
	response.Success(c, CartItemMutationResponse{
		Success: true,
		Message: "Cart item removed successfully!",
		CartID:  result.CartID,
		Removed: true,
	})
}
