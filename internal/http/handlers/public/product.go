package public

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductListInput 商品列表过滤条件，字段均可选
type ProductListInput struct {
	Key        string           `json:"key"`
	MinPrice   *decimal.Decimal `json:"min_price"`
	MaxPrice   *decimal.Decimal `json:"max_price"`
	MinOrder   *int             `json:"min_order" binding:"omitempty,gte=0"`
	Categories []uint           `json:"categories"`
	Page       int              `json:"page" binding:"omitempty,gte=1"`
	PageSize   int              `json:"page_size" binding:"omitempty,gte=1"`
}

func (in ProductListInput) toFilter() repository.ProductListFilter {
	filter := repository.ProductListFilter{
		Key:         in.Key,
		MinPrice:    in.MinPrice,
		MaxPrice:    in.MaxPrice,
		MinOrder:    in.MinOrder,
		CategoryIDs: in.Categories,
	}
	if in.Page > 0 || in.PageSize > 0 {
		filter.Page, filter.PageSize = handlershared.NormalizePagination(in.Page, in.PageSize)
	}
	return filter
}

// ListProducts 按过滤条件查询商品
func (h *Handler) ListProducts(c *gin.Context) {
	var input ProductListInput
	if err := handlershared.BindQueryInput(c, &input); err != nil {
		respondError(c, err)
		return
	}

	filter := input.toFilter()
	products, total, err := h.ProductService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if filter.PageSize == 0 {
		response.Success(c, products)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(filter.Page, filter.PageSize, total))
}

// GetProductBySlug 按 slug 或名称获取商品，未找到时 data 为 null
func (h *Handler) GetProductBySlug(c *gin.Context) {
	identifier, err := handlershared.BindQueryString(c, "identifier")
	if err != nil {
		respondError(c, err)
		return
	}
	product, err := h.ProductService.GetBySlug(c.Request.Context(), identifier)
	if err != nil {
		respondError(c, err)
		return
	}
	if product == nil {
		response.Success(c, nil)
		return
	}
	response.Success(c, product)
}

// ListCategories 获取全部分类
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, categories)
}
