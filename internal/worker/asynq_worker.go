package worker

import (
	"context"
	"encoding/json"

	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/provider"
	"github.com/wholesale-phone/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskProductLowStock, c.handleProductLowStock)
}

// handleProductLowStock 记录低库存提醒并清理商品缓存，以数据库中的最新库存为准
func (c *Consumer) handleProductLowStock(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_product_low_stock_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ProductLowStockPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_product_low_stock_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_product_low_stock_skip_invalid_payload", "product_id", payload.ProductID)
		return nil
	}

	product, err := c.Store.WithContext(ctx).Products.GetByID(payload.ProductID)
	if err != nil {
		logger.Warnw("worker_product_low_stock_fetch_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	if product == nil {
		logger.Debugw("worker_product_low_stock_skip_missing", "product_id", payload.ProductID)
		return nil
	}

	threshold := c.Config.Cart.LowStockThreshold
	if threshold > 0 && product.StockQuantity > threshold {
		// 入队后已补货
		logger.Debugw("worker_product_low_stock_skip_restocked",
			"product_id", product.ID,
			"stock_quantity", product.StockQuantity,
			"threshold", threshold,
		)
		return nil
	}

	logger.Warnw("product_low_stock",
		"product_id", product.ID,
		"sku", product.SKU,
		"name", product.Name,
		"stock_quantity", product.StockQuantity,
		"threshold", threshold,
	)
	if err := c.Cache.InvalidateProduct(ctx, product.Slug, product.Name); err != nil {
		logger.Warnw("worker_product_low_stock_cache_invalidate_failed", "product_id", product.ID, "error", err)
	}
	return nil
}
