package repository

import "github.com/shopspring/decimal"

// ProductListFilter 查询商品列表的过滤条件，零值字段不参与过滤
type ProductListFilter struct {
	Key          string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinOrder     *int
	CategoryIDs  []uint
	Page         int
	PageSize     int
	WithCategory bool
	NewestFirst  bool
}

// Predicate 将过滤条件转换为组合谓词
func (f ProductListFilter) Predicate() ProductPredicate {
	return AllOf(
		KeywordContains(f.Key),
		PriceAtLeast(f.MinPrice),
		PriceAtMost(f.MaxPrice),
		MinOrderAtLeast(f.MinOrder),
		CategoryIn(f.CategoryIDs),
	)
}
