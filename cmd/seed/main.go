package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/constants"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/provider"
	"github.com/wholesale-phone/internal/service"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type categorySeed struct {
	Slug        string
	Name        string
	Description string
}

type productSeed struct {
	SKU      string
	Name     string
	Category string
	Price    string
	Stock    int
	MinOrder int
}

var categorySeeds = []categorySeed{
	{Slug: "android-phones", Name: "Android Phones", Description: "Explore the latest smartphones running on the versatile Android operating system from various manufacturers."},
	{Slug: "ios-iphone", Name: "iOS (iPhone)", Description: "Discover Apple's iconic iPhone lineup, known for its intuitive iOS and powerful performance."},
	{Slug: "used-phones", Name: "Used Phones", Description: "Find great deals on pre-owned smartphones, thoroughly inspected and ready for a new owner."},
	{Slug: "new-phones", Name: "New Phones", Description: "Browse the newest smartphone models, factory-sealed and with full warranties."},
}

var productSeeds = []productSeed{
	{SKU: "PH51920251", Name: "Samsung Galaxy S10e", Category: "android-phones", Price: "109", Stock: 89, MinOrder: 1},
	{SKU: "PH51920252", Name: "Iphone 11 Pro Max", Category: "ios-iphone", Price: "420", Stock: 89, MinOrder: 2},
	{SKU: "PH51920253", Name: "Samsung S25 Ultra", Category: "android-phones", Price: "35", Stock: 89, MinOrder: 1},
	{SKU: "PH51920254", Name: "Iphone 14 Pro Max", Category: "ios-iphone", Price: "750", Stock: 201, MinOrder: 10},
	{SKU: "PH51920255", Name: "Itel S25 Ultra", Category: "used-phones", Price: "39", Stock: 40, MinOrder: 2},
	{SKU: "PH51920256", Name: "Iphone 12 Pro", Category: "used-phones", Price: "39", Stock: 100, MinOrder: 2},
	{SKU: "PH51920257", Name: "Huawei Nova 11 Ultra", Category: "new-phones", Price: "247", Stock: 200, MinOrder: 1},
	{SKU: "PH51920258", Name: "Samsung A15", Category: "new-phones", Price: "119", Stock: 171, MinOrder: 10},
	{SKU: "PH51920259", Name: "Samsung A22", Category: "new-phones", Price: "124", Stock: 2000, MinOrder: 20},
	{SKU: "PH519202510", Name: "Iphone 16 Pro Max", Category: "ios-iphone", Price: "70", Stock: 99, MinOrder: 1},
	{SKU: "PH519202511", Name: "Huawei Mate 60 Pro+", Category: "android-phones", Price: "887", Stock: 1023, MinOrder: 1},
	{SKU: "PH519202512", Name: "Xiaomi Fold 2", Category: "used-phones", Price: "660", Stock: 20, MinOrder: 1},
	{SKU: "PH519202513", Name: "Oppo Z Fold 3", Category: "used-phones", Price: "385", Stock: 43, MinOrder: 1},
	{SKU: "PH519202514", Name: "Samsung S21 Ultra", Category: "new-phones", Price: "221", Stock: 301, MinOrder: 5},
	{SKU: "PH519202515", Name: "Samsung S20 Ultra", Category: "new-phones", Price: "225", Stock: 102, MinOrder: 5},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	container, err := provider.NewContainer(cfg)
	if err != nil {
		stdLog.Fatalf("Failed to init container: %v", err)
	}
	defer func() {
		_ = container.Close()
	}()
	ctx := context.Background()

	// 分类按 slug 幂等写入
	categoryIDs := make(map[string]uint, len(categorySeeds))
	for _, seed := range categorySeeds {
		category, err := container.CategoryService.Upsert(ctx, service.UpsertCategoryInput{
			Slug:        seed.Slug,
			Name:        seed.Name,
			Description: seed.Description,
		})
		if err != nil {
			stdLog.Printf("Failed to upsert category %s: %v", seed.Slug, err)
			continue
		}
		categoryIDs[seed.Slug] = category.ID
		stdLog.Printf("Category ready: %s", seed.Slug)
	}

	// 商品按 sku 幂等写入，已存在时不覆盖库存
	for _, seed := range productSeeds {
		categoryID, ok := categoryIDs[seed.Category]
		if !ok {
			stdLog.Printf("Skip product %s: category %s missing", seed.SKU, seed.Category)
			continue
		}
		existing, err := container.Store.WithContext(ctx).Products.GetBySKU(seed.SKU)
		if err != nil {
			stdLog.Printf("Failed to check product %s: %v", seed.SKU, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Product already exists: %s", seed.SKU)
			continue
		}
		_, err = container.ProductService.Create(ctx, service.ProductInput{
			SKU:                  seed.SKU,
			Slug:                 slug.Make(seed.Name),
			Name:                 seed.Name,
			Description:          seed.Name + " wholesale lot, tested and unlocked.",
			Price:                decimal.RequireFromString(seed.Price),
			StockQuantity:        seed.Stock,
			MinimumOrderQuantity: seed.MinOrder,
			IsActive:             true,
			CategoryID:           categoryID,
		})
		if err != nil {
			stdLog.Printf("Failed to create product %s: %v", seed.SKU, err)
			continue
		}
		stdLog.Printf("Created product: %s", seed.SKU)
	}

	reportRoles(container)
	seedCatalogManager(ctx, container)
	stdLog.Printf("Seed finished")
}

// reportRoles 输出当前角色及其直接策略
func reportRoles(container *provider.Container) {
	stdLog := logger.StdLogger()
	roles, err := container.AuthzService.ListRoles()
	if err != nil {
		stdLog.Printf("Failed to list roles: %v", err)
		return
	}
	for _, role := range roles {
		policies, err := container.AuthzService.GetRolePolicies(role)
		if err != nil {
			stdLog.Printf("Failed to load policies of %s: %v", role, err)
			continue
		}
		objects := make([]string, 0, len(policies))
		for _, policy := range policies {
			objects = append(objects, policy.Object+":"+policy.Action)
		}
		stdLog.Printf("Role %s: %s", role, strings.Join(objects, ", "))
	}
}

// seedCatalogManager 为 SEED_ADMIN_EMAIL 指定的用户设置 SEED_ADMIN_ROLES 中的角色（默认 catalog_manager），需要时先注册
func seedCatalogManager(ctx context.Context, container *provider.Container) {
	stdLog := logger.StdLogger()
	raw := strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL"))
	if raw == "" {
		return
	}
	email, err := service.NormalizeEmail(raw)
	if err != nil {
		stdLog.Printf("Invalid SEED_ADMIN_EMAIL %q: %v", raw, err)
		return
	}
	user, err := container.Store.WithContext(ctx).Users.GetByEmail(email)
	if err != nil {
		stdLog.Printf("Failed to load admin user %s: %v", email, err)
		return
	}
	if user == nil {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if strings.TrimSpace(password) == "" {
			stdLog.Printf("Admin user %s not found and SEED_ADMIN_PASSWORD is empty, skipped", email)
			return
		}
		if _, err := container.UserAuthService.SignUp(ctx, email, password, ""); err != nil && !errors.Is(err, service.ErrEmailExists) {
			stdLog.Printf("Failed to register admin user %s: %v", email, err)
			return
		}
		user, err = container.Store.WithContext(ctx).Users.GetByEmail(email)
		if err != nil || user == nil {
			stdLog.Printf("Failed to reload admin user %s: %v", email, err)
			return
		}
	}
	if err := container.AuthzService.SetUserRoles(user.ID, parseSeedRoles(os.Getenv("SEED_ADMIN_ROLES"))); err != nil {
		stdLog.Printf("Failed to set roles of %s: %v", email, err)
		return
	}
	roles, err := container.AuthzService.GetUserRoles(user.ID)
	if err != nil {
		stdLog.Printf("Failed to read roles of %s: %v", email, err)
		return
	}
	stdLog.Printf("Roles of %s: %s", email, strings.Join(roles, ", "))
}

// parseSeedRoles 解析逗号分隔的角色列表，去重，为空时返回 catalog_manager
func parseSeedRoles(raw string) []string {
	seen := make(map[string]struct{})
	roles := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		role := strings.TrimSpace(part)
		if role == "" {
			continue
		}
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return []string{constants.AuthzRoleCatalogManager}
	}
	return roles
}
