package repository

import "testing"

func TestEnsureForUserIsIdempotent(t *testing.T) {
	store, db := setupStoreTest(t)
	user := createTestUser(t, db, "cart@example.com")

	first, err := store.Carts.EnsureForUser(user.ID)
	if err != nil {
		t.Fatalf("ensure cart failed: %v", err)
	}
	second, err := store.Carts.EnsureForUser(user.ID)
	if err != nil {
		t.Fatalf("ensure cart again failed: %v", err)
	}
	if first.ID == 0 || first.ID != second.ID {
		t.Fatalf("expected the same cart, got %d and %d", first.ID, second.ID)
	}
}

func TestAddItemQuantityMergesLines(t *testing.T) {
	store, db := setupStoreTest(t)
	user := createTestUser(t, db, "merge@example.com")
	category := createTestCategory(t, db, "ios-iphone")
	product := createTestProduct(t, db, category.ID, "PH-M1", "iPhone 11", "160", 10, 1)

	cart, err := store.Carts.EnsureForUser(user.ID)
	if err != nil {
		t.Fatalf("ensure cart failed: %v", err)
	}
	item, err := store.Carts.AddItemQuantity(cart.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", item.Quantity)
	}
	item, err = store.Carts.AddItemQuantity(cart.ID, product.ID, 3)
	if err != nil {
		t.Fatalf("add item again failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", item.Quantity)
	}

	items, err := store.Carts.ListItems(cart.ID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single line, got %d", len(items))
	}
	if items[0].Product == nil || items[0].Product.SKU != "PH-M1" || items[0].Product.Price.String() != "160.00" {
		t.Fatalf("expected product projection, got %+v", items[0].Product)
	}
}

func TestSetAndDeleteItem(t *testing.T) {
	store, db := setupStoreTest(t)
	user := createTestUser(t, db, "set@example.com")
	category := createTestCategory(t, db, "used-phones")
	product := createTestProduct(t, db, category.ID, "PH-U1", "Used Note 9", "70", 10, 1)

	cart, _ := store.Carts.EnsureForUser(user.ID)
	item, err := store.Carts.AddItemQuantity(cart.ID, product.ID, 4)
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if _, err := store.Carts.SetItemQuantity(item.ID, 0); err == nil {
		t.Fatalf("zero quantity must be rejected")
	}
	if affected, err := store.Carts.SetItemQuantity(item.ID, 7); err != nil || affected != 1 {
		t.Fatalf("set quantity failed: affected=%d err=%v", affected, err)
	}
	stored, _ := store.Carts.GetItem(cart.ID, product.ID)
	if stored == nil || stored.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %+v", stored)
	}
	locked, err := store.Carts.GetItemForUpdate(cart.ID, product.ID)
	if err != nil || locked == nil || locked.ID != item.ID {
		t.Fatalf("expected locked read to return the line, got %+v err=%v", locked, err)
	}
	if affected, err := store.Carts.DeleteItem(item.ID); err != nil || affected != 1 {
		t.Fatalf("delete item failed: affected=%d err=%v", affected, err)
	}
	stored, _ = store.Carts.GetItem(cart.ID, product.ID)
	if stored != nil {
		t.Fatalf("expected line removed")
	}
	// 已删除的行再次操作不应影响任何记录
	if affected, err := store.Carts.DeleteItem(item.ID); err != nil || affected != 0 {
		t.Fatalf("second delete should affect 0 rows, affected=%d err=%v", affected, err)
	}
	if affected, err := store.Carts.SetItemQuantity(item.ID, 3); err != nil || affected != 0 {
		t.Fatalf("set on deleted line should affect 0 rows, affected=%d err=%v", affected, err)
	}
}
