package cache

import (
	"context"
	"strings"
)

const categoriesKey = "catalog:categories"

// ProductKey 商品详情缓存键（按 slug 或名称）
func ProductKey(identifier string) string {
	return "catalog:product:" + strings.TrimSpace(identifier)
}

// CategoriesKey 分类列表缓存键
func CategoriesKey() string {
	return categoriesKey
}

// InvalidateProduct 清理商品详情缓存，slug 与名称两种查找方式都会清理
func (c *Client) InvalidateProduct(ctx context.Context, slug, name string) error {
	keys := make([]string, 0, 2)
	if strings.TrimSpace(slug) != "" {
		keys = append(keys, ProductKey(slug))
	}
	if strings.TrimSpace(name) != "" && name != slug {
		keys = append(keys, ProductKey(name))
	}
	return c.Del(ctx, keys...)
}

// InvalidateCategories 清理分类列表缓存
func (c *Client) InvalidateCategories(ctx context.Context) error {
	return c.Del(ctx, categoriesKey)
}
