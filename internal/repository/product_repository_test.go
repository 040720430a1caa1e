package repository

import (
	"testing"

	"github.com/shopspring/decimal"
)

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func TestProductListPredicates(t *testing.T) {
	store, db := setupStoreTest(t)
	android := createTestCategory(t, db, "android-phones")
	ios := createTestCategory(t, db, "ios-iphone")

	createTestProduct(t, db, android.ID, "PH-A1", "Samsung Galaxy S10e", "109", 89, 1)
	createTestProduct(t, db, android.ID, "PH-A2", "Google Pixel 7", "150", 20, 5)
	createTestProduct(t, db, ios.ID, "PH-I1", "iPhone 13 Mini", "200", 15, 10)
	createTestProduct(t, db, ios.ID, "PH-I2", "iPhone 14 Pro", "450", 4, 2)

	cases := []struct {
		name   string
		filter ProductListFilter
		want   []string
	}{
		{name: "empty filter returns all", filter: ProductListFilter{}, want: []string{"PH-A1", "PH-A2", "PH-I1", "PH-I2"}},
		{name: "price window inclusive", filter: ProductListFilter{MinPrice: decimalPtr(100), MaxPrice: decimalPtr(200)}, want: []string{"PH-A1", "PH-A2", "PH-I1"}},
		{name: "keyword is case insensitive", filter: ProductListFilter{Key: "IPHONE"}, want: []string{"PH-I1", "PH-I2"}},
		{name: "keyword matches description", filter: ProductListFilter{Key: "wholesale lot"}, want: []string{"PH-A1", "PH-A2", "PH-I1", "PH-I2"}},
		{name: "min order lower bound", filter: ProductListFilter{MinOrder: intPtr(5)}, want: []string{"PH-A2", "PH-I1"}},
		{name: "category set", filter: ProductListFilter{CategoryIDs: []uint{ios.ID}}, want: []string{"PH-I1", "PH-I2"}},
		{name: "fields combine with and", filter: ProductListFilter{Key: "pixel", CategoryIDs: []uint{ios.ID}}, want: []string{}},
		{name: "wildcards are literal", filter: ProductListFilter{Key: "%"}, want: []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, total, err := store.Products.List(tc.filter)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if int(total) != len(tc.want) || len(rows) != len(tc.want) {
				t.Fatalf("want %d rows got total=%d len=%d", len(tc.want), total, len(rows))
			}
			for i, sku := range tc.want {
				if rows[i].SKU != sku {
					t.Fatalf("row %d want %s got %s", i, sku, rows[i].SKU)
				}
			}
		})
	}
}

func TestProductListPagination(t *testing.T) {
	store, db := setupStoreTest(t)
	category := createTestCategory(t, db, "used-phones")
	createTestProduct(t, db, category.ID, "PH-P1", "Phone One", "10", 1, 1)
	createTestProduct(t, db, category.ID, "PH-P2", "Phone Two", "10", 1, 1)
	createTestProduct(t, db, category.ID, "PH-P3", "Phone Three", "10", 1, 1)

	rows, total, err := store.Products.List(ProductListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(rows) != 1 || rows[0].SKU != "PH-P3" {
		t.Fatalf("unexpected page: total=%d rows=%v", total, rows)
	}
}

func TestGetBySlugOrName(t *testing.T) {
	store, db := setupStoreTest(t)
	category := createTestCategory(t, db, "new-phones")
	product := createTestProduct(t, db, category.ID, "PH-S1", "Galaxy A54", "180", 3, 1)

	bySlug, err := store.Products.GetBySlugOrName(product.Slug)
	if err != nil || bySlug == nil || bySlug.ID != product.ID {
		t.Fatalf("lookup by slug failed: %v %+v", err, bySlug)
	}
	if bySlug.Category == nil || bySlug.Category.Slug != "new-phones" {
		t.Fatalf("expected category preloaded")
	}
	byName, err := store.Products.GetBySlugOrName("Galaxy A54")
	if err != nil || byName == nil || byName.ID != product.ID {
		t.Fatalf("lookup by name failed: %v %+v", err, byName)
	}
	missing, err := store.Products.GetBySlugOrName("nokia-3310")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing product, got %+v err=%v", missing, err)
	}
}

func TestDecrementStockIsConditional(t *testing.T) {
	store, db := setupStoreTest(t)
	category := createTestCategory(t, db, "android-phones")
	product := createTestProduct(t, db, category.ID, "PH-D1", "Moto G", "90", 3, 1)

	affected, err := store.Products.DecrementStock(product.ID, 4)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("decrement beyond stock should affect 0 rows, got %d", affected)
	}
	affected, err = store.Products.DecrementStock(product.ID, 3)
	if err != nil || affected != 1 {
		t.Fatalf("decrement to zero failed: affected=%d err=%v", affected, err)
	}
	if _, err := store.Products.IncrementStock(product.ID, 2); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	stored, _ := store.Products.GetByID(product.ID)
	if stored.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", stored.StockQuantity)
	}
	if _, err := store.Products.DecrementStock(product.ID, 0); err == nil {
		t.Fatalf("expected invalid params error")
	}
}
