package provider

import (
	"errors"
	"fmt"
	"time"

	"github.com/wholesale-phone/internal/authz"
	"github.com/wholesale-phone/internal/cache"
	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/queue"
	"github.com/wholesale-phone/internal/repository"
	"github.com/wholesale-phone/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器，持有数据库句柄与各服务，退出时 Close 释放
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Store       *repository.Store
	Cache       *cache.Client
	QueueClient *queue.Client

	// Services
	AuthzService    *authz.Service
	UserAuthService *service.UserAuthService
	ProductService  *service.ProductService
	CategoryService *service.CategoryService
	CartService     *service.CartService
}

// NewContainer 打开数据库、完成迁移并初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		_ = models.CloseDB(db)
		return nil, fmt.Errorf("migrate database failed: %w", err)
	}

	c, err := NewContainerWithDB(cfg, db)
	if err != nil {
		_ = models.CloseDB(db)
		return nil, err
	}
	return c, nil
}

// NewContainerWithDB 基于已打开的数据库句柄初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and db are required")
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		Store:       repository.NewStore(db),
		Cache:       cache.New(&cfg.Redis),
		QueueClient: queueClient,
	}
	if err := c.initServices(); err != nil {
		_ = c.closeClients()
		return nil, err
	}
	return c, nil
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}

	cacheTTL := time.Duration(c.Config.Catalog.CacheTTLSeconds) * time.Second
	var alerts service.StockAlertPublisher
	if c.QueueClient.Enabled() {
		alerts = c.QueueClient
	}

	c.UserAuthService = service.NewUserAuthService(c.Config, c.Store, c.Cache)
	c.ProductService = service.NewProductService(c.Store, c.Cache, cacheTTL)
	c.CategoryService = service.NewCategoryService(c.Store, c.Cache, cacheTTL)
	c.CartService = service.NewCartService(c.Store, c.Cache, alerts, c.Config.Cart.LowStockThreshold)
	return nil
}

// Close 释放数据库、缓存与队列连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	err := c.closeClients()
	if dbErr := models.CloseDB(c.DB); dbErr != nil {
		err = errors.Join(err, dbErr)
	}
	return err
}

func (c *Container) closeClients() error {
	var err error
	if cacheErr := c.Cache.Close(); cacheErr != nil {
		err = errors.Join(err, cacheErr)
	}
	if queueErr := c.QueueClient.Close(); queueErr != nil {
		err = errors.Join(err, queueErr)
	}
	return err
}
