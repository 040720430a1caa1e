package router

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wholesale-phone/internal/authz"
	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/constants"
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(buildCORSConfig(cfg))
}

func buildCORSConfig(cfg config.CORSConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Second,
	}
	if len(corsCfg.AllowMethods) == 0 {
		corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(corsCfg.AllowHeaders) == 0 {
		corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	}

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	wildcard := len(cfg.AllowedOrigins) == 0
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			wildcard = true
			continue
		}
		if strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://") {
			origins = append(origins, origin)
		}
	}
	switch {
	case wildcard && cfg.AllowCredentials:
		// 携带凭证时不能返回 *，回显请求来源
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	case wildcard || len(origins) == 0:
		corsCfg.AllowAllOrigins = true
	default:
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}

// RequestIDMiddleware 请求 ID 中间件，同时把带 request_id 的日志挂到请求 context
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		ctx := logger.WithContext(c.Request.Context(), logger.SW("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Z()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if user, ok := handlershared.GetSessionUser(c); ok {
			entry = entry.With("user_id", user.ID)
		}
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(constants.ContextKeyRequestID)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// SessionMiddleware 解析会话令牌（Cookie 优先，其次 Bearer），无效或已停用按匿名处理，其他错误返回 500
func SessionMiddleware(cookieName string, provider service.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := readSessionToken(c, cookieName)
		if token == "" || provider == nil {
			c.Next()
			return
		}
		user, err := provider.GetSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) || errors.Is(err, service.ErrUserDisabled) {
				handlershared.RequestLog(c).Debugw("session_rejected", "error", err)
				c.Next()
				return
			}
			handlershared.RequestLog(c).Errorw("session_lookup_failed", "error", err)
			respondGateFailure(c, response.CodeInternal, handlershared.MsgInternal)
			c.Abort()
			return
		}
		handlershared.SetSessionUser(c, user)
		c.Next()
	}
}

func readSessionToken(c *gin.Context, cookieName string) string {
	if name := strings.TrimSpace(cookieName); name != "" {
		if value, err := c.Cookie(name); err == nil && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireSession 要求已登录会话，否则返回 401
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := handlershared.GetSessionUser(c); !ok {
			respondGateFailure(c, response.CodeUnauthorized, handlershared.MsgUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminGate 管理过程鉴权：未启用 RBAC 时放行；启用后未登录 401，按过程名校验角色，拒绝 403
func AdminGate(enabled bool, authzService *authz.Service, procedure string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		user, ok := handlershared.GetSessionUser(c)
		if !ok {
			respondGateFailure(c, response.CodeUnauthorized, handlershared.MsgUnauthorized)
			c.Abort()
			return
		}
		if authzService == nil {
			logger.Errorw("admin_rbac_service_unavailable", "procedure", procedure)
			respondGateFailure(c, response.CodeForbidden, handlershared.MsgForbidden)
			c.Abort()
			return
		}

		allowed, err := authzService.EnforceUser(user.ID, procedure)
		if err != nil {
			handlershared.RequestLog(c).Errorw("admin_rbac_enforce_failed",
				"user_id", user.ID,
				"procedure", procedure,
				"error", err,
			)
			respondGateFailure(c, response.CodeForbidden, handlershared.MsgForbidden)
			c.Abort()
			return
		}
		if !allowed {
			handlershared.RequestLog(c).Warnw("admin_rbac_permission_denied",
				"user_id", user.ID,
				"procedure", procedure,
			)
			respondGateFailure(c, response.CodeForbidden, handlershared.MsgForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// respondGateFailure 变更类过程返回 {success:false} 形式，查询类返回普通错误
func respondGateFailure(c *gin.Context, code int, msg string) {
	if c.Request.Method == http.MethodPost {
		response.MutationFailure(c, code, msg)
		return
	}
	response.Error(c, code, msg)
}
