package repository

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// productKeywordColumns 关键字匹配的列
var productKeywordColumns = []string{"slug", "name", "description"}

// ProductPredicate 商品查询谓词，作为 gorm scope 使用；nil 表示不限制
type ProductPredicate func(db *gorm.DB) *gorm.DB

// AllOf 以 AND 组合多个谓词，忽略 nil
func AllOf(predicates ...ProductPredicate) ProductPredicate {
	active := make([]ProductPredicate, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range active {
			db = p(db)
		}
		return db
	}
}

// KeywordContains slug/name/description 任一包含关键字（忽略大小写）
func KeywordContains(key string) ProductPredicate {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		condition, argCount := buildContainsCondition(dbDialectName(db), productKeywordColumns)
		return db.Where(condition, repeatLikeArgs(escapeLikePattern(key), argCount)...)
	}
}

// PriceAtLeast 价格下限（含）
func PriceAtLeast(min *decimal.Decimal) ProductPredicate {
	if min == nil {
		return nil
	}
	value := min.Round(2)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("price >= ?", value)
	}
}

// PriceAtMost 价格上限（含）
func PriceAtMost(max *decimal.Decimal) ProductPredicate {
	if max == nil {
		return nil
	}
	value := max.Round(2)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("price <= ?", value)
	}
}

// MinOrderAtLeast 起订量下限（含）
func MinOrderAtLeast(min *int) ProductPredicate {
	if min == nil {
		return nil
	}
	value := *min
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("minimum_order_quantity >= ?", value)
	}
}

// CategoryIn 分类集合匹配
func CategoryIn(categoryIDs []uint) ProductPredicate {
	if len(categoryIDs) == 0 {
		return nil
	}
	ids := append([]uint(nil), categoryIDs...)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id IN ?", ids)
	}
}
