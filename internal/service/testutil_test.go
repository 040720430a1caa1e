package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/queue"
	"github.com/wholesale-phone/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceStore(t *testing.T) (*repository.Store, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repository.NewStore(db), db
}

func seedCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Slug: slug, Name: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, categoryID uint, sku, name string, stock, minOrder int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:           categoryID,
		SKU:                  sku,
		Slug:                 strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Name:                 name,
		Price:                models.MustMoney("109"),
		StockQuantity:        stock,
		MinimumOrderQuantity: minOrder,
		IsActive:             true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", Name: "Buyer", Status: "active"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func loadStock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var stock int
	if err := db.Model(&models.Product{}).Where("id = ?", productID).Pluck("stock_quantity", &stock).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	return stock
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			Secret:      "test-session-secret",
			ExpireHours: 1,
			CookieName:  "wp_session",
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
}

// recordingAlerts 记录低库存提醒
type recordingAlerts struct {
	mu       sync.Mutex
	payloads []queue.ProductLowStockPayload
}

func (r *recordingAlerts) EnqueueProductLowStock(payload queue.ProductLowStockPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingAlerts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}
