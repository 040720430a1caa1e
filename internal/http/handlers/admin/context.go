package admin

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// getOperatorID 当前操作人，未登录时返回 nil
func getOperatorID(c *gin.Context) *uint {
	user, ok := handlershared.GetSessionUser(c)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}
