package admin

import (
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, err error) {
	handlershared.RespondError(c, err)
}

func respondMutationError(c *gin.Context, err error) {
	handlershared.RespondMutationError(c, err)
}
