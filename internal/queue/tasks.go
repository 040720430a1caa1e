package queue

import (
	"encoding/json"

	"github.com/wholesale-phone/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskProductLowStock 低库存提醒任务
const TaskProductLowStock = constants.TaskProductLowStock

// ProductLowStockPayload 低库存提醒任务载荷
type ProductLowStockPayload struct {
	ProductID     uint   `json:"product_id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	StockQuantity int    `json:"stock_quantity"`
}

// NewProductLowStockTask 创建低库存提醒任务
func NewProductLowStockTask(payload ProductLowStockPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProductLowStock, body), nil
}
