package public

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
)

func requireSessionUser(c *gin.Context) (*service.SessionUser, bool) {
	return handlershared.RequireSessionUser(c)
}

func respondError(c *gin.Context, err error) {
	handlershared.RespondError(c, err)
}

func respondMutationError(c *gin.Context, err error) {
	handlershared.RespondMutationError(c, err)
}
