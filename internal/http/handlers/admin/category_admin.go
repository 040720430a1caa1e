package admin

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryPayload 分类写入请求
type CategoryPayload struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpsertCategory 按 slug 创建或更新分类
func (h *Handler) UpsertCategory(c *gin.Context) {
	var req CategoryPayload
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}
	category, err := h.CategoryService.Upsert(c.Request.Context(), service.UpsertCategoryInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondMutationError(c, err)
		return
	}
	requestLog(c).Infow("admin_category_upserted", "category_id", category.ID, "slug", category.Slug)
	response.Success(c, category)
}
