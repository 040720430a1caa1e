package router

import (
	"fmt"
	"strings"

	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/constants"
	adminhandlers "github.com/wholesale-phone/internal/http/handlers/admin"
	publichandlers "github.com/wholesale-phone/internal/http/handlers/public"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/provider"

	"github.com/gin-gonic/gin"
)

// RPCBasePath 过程调用前缀，完整路径为 /api/rpc/<procedure>
const RPCBasePath = "/api/rpc"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "wp"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
	}
	rbacEnabled := cfg.Security.AdminRBAC.Enabled
	admin := func(procedure string) gin.HandlerFunc {
		return AdminGate(rbacEnabled, c.AuthzService, procedure)
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(SessionMiddleware(cfg.Session.CookieName, c.UserAuthService))

	rpc := r.Group(RPCBasePath)
	{
		// 公开过程
		rpc.GET(procPath(constants.ProcHealthCheck), publicHandler.HealthCheck)
		rpc.GET(procPath(constants.ProcProductList), publicHandler.ListProducts)
		rpc.GET(procPath(constants.ProcProductBySlug), publicHandler.GetProductBySlug)
		rpc.GET(procPath(constants.ProcProductCategories), publicHandler.ListCategories)

		// 认证过程
		rpc.POST(procPath(constants.ProcAuthLogin),
			RateLimitMiddleware(c.Cache.Redis(), loginRule, KeyByIPAndJSONField("email")),
			publicHandler.Login,
		)
		rpc.POST(procPath(constants.ProcAuthRegister), publicHandler.Register)
		rpc.GET(procPath(constants.ProcAuthGetSession), RequireSession(), publicHandler.GetSession)
		rpc.POST(procPath(constants.ProcAuthLogout), RequireSession(), publicHandler.Logout)

		// 购物车过程
		rpc.GET(procPath(constants.ProcCartGetCart), RequireSession(), publicHandler.GetCart)
		rpc.POST(procPath(constants.ProcCartAddToCart), RequireSession(), publicHandler.AddToCart)
		rpc.POST(procPath(constants.ProcCartUpdateItem), RequireSession(), publicHandler.UpdateCartItem)
		rpc.POST(procPath(constants.ProcCartRemoveItem), RequireSession(), publicHandler.RemoveCartItem)

		// 管理过程
		rpc.POST(procPath(constants.ProcProductCreate), admin(constants.ProcProductCreate), adminHandler.CreateProduct)
		rpc.POST(procPath(constants.ProcProductUpdate), admin(constants.ProcProductUpdate), adminHandler.UpdateProduct)
		rpc.POST(procPath(constants.ProcCategoryUpsert), admin(constants.ProcCategoryUpsert), adminHandler.UpsertCategory)
		rpc.GET(procPath(constants.ProcAdminProductList), admin(constants.ProcAdminProductList), adminHandler.ListProducts)
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Procedure not found.")
	})

	return r
}

func procPath(procedure string) string {
	return "/" + procedure
}
