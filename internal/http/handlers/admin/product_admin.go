package admin

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductPayload 商品创建/更新请求，更新时按 sku 定位并整体覆盖
type ProductPayload struct {
	SKU                  string          `json:"sku" binding:"required"`
	Slug                 string          `json:"slug" binding:"required"`
	Name                 string          `json:"name" binding:"required"`
	Description          string          `json:"description"`
	Price                decimal.Decimal `json:"price"`
	ImageURL             string          `json:"image_url"`
	StockQuantity        int             `json:"stock_quantity" binding:"gte=0"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity" binding:"gte=1"`
	IsFeatured           bool            `json:"is_featured"`
	IsActive             bool            `json:"is_active"`
	CategoryID           uint            `json:"category_id" binding:"required"`
	UserID               *uint           `json:"user_id"`
}

func (p ProductPayload) toInput(operatorID *uint) service.ProductInput {
	createdBy := p.UserID
	if operatorID != nil {
		createdBy = operatorID
	}
	return service.ProductInput{
		SKU:                  p.SKU,
		Slug:                 p.Slug,
		Name:                 p.Name,
		Description:          p.Description,
		ImageURL:             p.ImageURL,
		Price:                p.Price,
		StockQuantity:        p.StockQuantity,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
		IsFeatured:           p.IsFeatured,
		IsActive:             p.IsActive,
		CategoryID:           p.CategoryID,
		CreatedByUserID:      createdBy,
	}
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductPayload
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req.toInput(getOperatorID(c)))
	if err != nil {
		respondMutationError(c, err)
		return
	}
	requestLog(c).Infow("admin_product_created", "product_id", product.ID, "sku", product.SKU)
	response.Success(c, product)
}

// UpdateProduct 按 sku 整体更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req ProductPayload
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), req.toInput(nil))
	if err != nil {
		respondMutationError(c, err)
		return
	}
	requestLog(c).Infow("admin_product_updated", "product_id", product.ID, "sku", product.SKU)
	response.Success(c, product)
}

// ListProducts 管理端商品列表，按创建时间倒序
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.ProductService.AdminList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, products)
}
