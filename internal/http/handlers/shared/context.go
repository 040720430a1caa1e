package shared

import (
	"context"

	"github.com/wholesale-phone/internal/constants"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
)

type sessionUserKey struct{}

// WithSessionUser 将会话用户写入请求 context
func WithSessionUser(ctx context.Context, user *service.SessionUser) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionUserKey{}, user)
}

// SessionUserFromContext 从请求 context 读取会话用户
func SessionUserFromContext(ctx context.Context) (*service.SessionUser, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(sessionUserKey{}).(*service.SessionUser)
	return user, ok && user != nil
}

// SetSessionUser 同时写入 gin 上下文与请求 context
func SetSessionUser(c *gin.Context, user *service.SessionUser) {
	if c == nil || user == nil {
		return
	}
	c.Set(constants.ContextKeySessionUser, user)
	c.Set(constants.ContextKeyUserID, user.ID)
	c.Request = c.Request.WithContext(WithSessionUser(c.Request.Context(), user))
}

// GetSessionUser 读取当前会话用户
func GetSessionUser(c *gin.Context) (*service.SessionUser, bool) {
	if c == nil {
		return nil, false
	}
	if value, ok := c.Get(constants.ContextKeySessionUser); ok {
		if user, ok := value.(*service.SessionUser); ok && user != nil {
			return user, true
		}
	}
	if c.Request == nil {
		return nil, false
	}
	return SessionUserFromContext(c.Request.Context())
}

// RequireSessionUser 读取会话用户，缺失时直接返回 401
func RequireSessionUser(c *gin.Context) (*service.SessionUser, bool) {
	user, ok := GetSessionUser(c)
	if !ok {
		response.Unauthorized(c, MsgUnauthorized)
		return nil, false
	}
	return user, true
}
