package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                        // 主键
	CategoryID           uint           `gorm:"not null;index" json:"category_id"`                           // 分类ID
	SKU                  string         `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"` // 库存单位编码
	Slug                 string         `gorm:"type:varchar(255);index;not null" json:"slug"`                // 访问标识
	Name                 string         `gorm:"type:varchar(255);index;not null" json:"name"`                // 商品名称
	Description          string         `gorm:"type:text" json:"description"`                                // 商品描述
	ImageURL             string         `gorm:"type:varchar(500)" json:"image_url"`                          // 主图地址
	Price                Money          `gorm:"type:decimal(20,2);not null;default:0;index" json:"price"`    // 单价
	StockQuantity        int            `gorm:"not null;default:0" json:"stock_quantity"`                    // 可预留库存
	MinimumOrderQuantity int            `gorm:"not null;default:1" json:"minimum_order_quantity"`            // 单行最小起订量
	IsFeatured           bool           `gorm:"default:false;index" json:"is_featured"`                      // 是否推荐
	IsActive             bool           `gorm:"default:true;index" json:"is_active"`                         // 是否上架
	CreatedByUserID      *uint          `gorm:"index" json:"created_by_user_id,omitempty"`                   // 创建人
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt            time.Time      `json:"updated_at"`                                                  // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
