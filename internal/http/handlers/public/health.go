package public

import (
	"github.com/wholesale-phone/internal/http/response"

	"github.com/gin-gonic/gin"
)

// HealthCheck 连通性检查
func (h *Handler) HealthCheck(c *gin.Context) {
	response.Success(c, "Connection OK!")
}
