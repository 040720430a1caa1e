package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/constants"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type rpcEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type mutationData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func setupRouterTest(t *testing.T, mutate func(cfg *config.Config)) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()

	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		Session: config.SessionConfig{Secret: "router-test-secret", ExpireHours: 1, CookieName: "wp_session"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, AllowCredentials: true},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8},
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	c, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})
	return SetupRouter(cfg, c), c
}

func callQuery(t *testing.T, r *gin.Engine, procedure, input, cookie string) rpcEnvelope {
	t.Helper()
	target := RPCBasePath + "/" + procedure
	if input != "" {
		target += "?input=" + url.QueryEscape(input)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return serveRPC(t, r, req)
}

func callMutation(t *testing.T, r *gin.Engine, procedure, body, cookie string) (rpcEnvelope, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, RPCBasePath+"/"+procedure, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return decodeEnvelope(t, w), w
}

func serveRPC(t *testing.T, r *gin.Engine, req *http.Request) rpcEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return decodeEnvelope(t, w)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) rpcEnvelope {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp rpcEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func decodeMutation(t *testing.T, resp rpcEnvelope) mutationData {
	t.Helper()
	var data mutationData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal mutation data failed: %v", err)
	}
	return data
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "wp_session" && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value
		}
	}
	t.Fatalf("session cookie not set")
	return ""
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123","name":"Buyer"}`, email)
	resp, w := callMutation(t, r, constants.ProcAuthRegister, body, "")
	if resp.StatusCode != 0 {
		t.Fatalf("register failed: %d %s", resp.StatusCode, string(resp.Data))
	}
	return sessionCookie(t, w)
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouterTest(t, nil)
	resp := callQuery(t, r, constants.ProcHealthCheck, "", "")
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if string(resp.Data) != `"Connection OK!"` {
		t.Fatalf("unexpected data: %s", string(resp.Data))
	}
}

func TestUnknownProcedureNotFound(t *testing.T) {
	r, _ := setupRouterTest(t, nil)
	resp := callQuery(t, r, "product.nope", "", "")
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}
}

func TestSessionProceduresRequireLogin(t *testing.T) {
	r, _ := setupRouterTest(t, nil)

	resp := callQuery(t, r, constants.ProcAuthGetSession, "", "")
	if resp.StatusCode != 401 {
		t.Fatalf("getSession status_code want 401 got %d", resp.StatusCode)
	}

	resp, _ = callMutation(t, r, constants.ProcCartAddToCart, `{"product_id":1,"quantity":1}`, "")
	if resp.StatusCode != 401 {
		t.Fatalf("addToCart status_code want 401 got %d", resp.StatusCode)
	}
	data := decodeMutation(t, resp)
	if data.Success || data.Message != "Unauthorized." {
		t.Fatalf("unexpected mutation data: %+v", data)
	}

	resp = callQuery(t, r, constants.ProcCartGetCart, "", "wp_session=garbage")
	if resp.StatusCode != 401 {
		t.Fatalf("invalid cookie status_code want 401 got %d", resp.StatusCode)
	}
}

func TestRegisterSessionAndLogout(t *testing.T) {
	r, _ := setupRouterTest(t, nil)
	cookie := registerUser(t, r, "buyer@example.com")

	resp := callQuery(t, r, constants.ProcAuthGetSession, "", cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("getSession status_code want 0 got %d", resp.StatusCode)
	}
	var session struct {
		Message string `json:"message"`
		User    struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Data, &session); err != nil {
		t.Fatalf("unmarshal session failed: %v", err)
	}
	if session.Message != "User Authenticated!" || session.User.Email != "buyer@example.com" {
		t.Fatalf("unexpected session: %+v", session)
	}

	resp, _ = callMutation(t, r, constants.ProcAuthRegister, `{"email":"buyer@example.com","password":"password123","name":"Again"}`, "")
	if resp.StatusCode != 409 {
		t.Fatalf("duplicate register status_code want 409 got %d", resp.StatusCode)
	}

	resp, _ = callMutation(t, r, constants.ProcAuthLogout, `{}`, cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("logout status_code want 0 got %d", resp.StatusCode)
	}
	resp = callQuery(t, r, constants.ProcAuthGetSession, "", cookie)
	if resp.StatusCode != 401 {
		t.Fatalf("revoked session status_code want 401 got %d", resp.StatusCode)
	}
}

func TestLoginValidationAndCredentials(t *testing.T) {
	r, _ := setupRouterTest(t, nil)
	registerUser(t, r, "login@example.com")

	resp, _ := callMutation(t, r, constants.ProcAuthLogin, `{"email":"not-an-email","password":"password123"}`, "")
	if resp.StatusCode != 400 {
		t.Fatalf("invalid email status_code want 400 got %d", resp.StatusCode)
	}
	if msg := decodeMutation(t, resp).Message; msg != "This is not a valid email." {
		t.Fatalf("unexpected message: %s", msg)
	}

	resp, _ = callMutation(t, r, constants.ProcAuthLogin, `{"email":"login@example.com","password":"wrong-password"}`, "")
	if resp.StatusCode != 401 {
		t.Fatalf("bad password status_code want 401 got %d", resp.StatusCode)
	}

	resp, w := callMutation(t, r, constants.ProcAuthLogin, `{"email":"Login@Example.com","password":"password123"}`, "")
	if resp.StatusCode != 0 {
		t.Fatalf("login status_code want 0 got %d", resp.StatusCode)
	}
	if data := decodeMutation(t, resp); !data.Success || data.Message != "User authenticated!" {
		t.Fatalf("unexpected login data: %+v", data)
	}
	cookie := sessionCookie(t, w)

	// Bearer 头同样可用
	token := strings.TrimPrefix(cookie, "wp_session=")
	req := httptest.NewRequest(http.MethodGet, RPCBasePath+"/"+constants.ProcAuthGetSession, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if got := serveRPC(t, r, req); got.StatusCode != 0 {
		t.Fatalf("bearer session status_code want 0 got %d", got.StatusCode)
	}
}

func TestCatalogAndCartFlow(t *testing.T) {
	r, c := setupRouterTest(t, nil)
	category := &models.Category{Slug: "android-phones", Name: "Android Phones"}
	if err := c.DB.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID:           category.ID,
		SKU:                  "PH51920251",
		Slug:                 "samsung-galaxy-s10e",
		Name:                 "Samsung Galaxy S10e",
		Price:                models.MustMoney("109"),
		StockQuantity:        10,
		MinimumOrderQuantity: 2,
		IsActive:             true,
	}
	if err := c.DB.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	resp := callQuery(t, r, constants.ProcProductList, `{"key":"galaxy","min_order":2}`, "")
	if resp.StatusCode != 0 {
		t.Fatalf("product.list status_code want 0 got %d", resp.StatusCode)
	}
	var products []models.Product
	if err := json.Unmarshal(resp.Data, &products); err != nil {
		t.Fatalf("unmarshal products failed: %v", err)
	}
	if len(products) != 1 || products[0].SKU != "PH51920251" {
		t.Fatalf("unexpected products: %+v", products)
	}

	resp = callQuery(t, r, constants.ProcProductBySlug, `"samsung-galaxy-s10e"`, "")
	if resp.StatusCode != 0 || string(resp.Data) == "null" {
		t.Fatalf("bySlug should find product, got %d %s", resp.StatusCode, string(resp.Data))
	}
	resp = callQuery(t, r, constants.ProcProductBySlug, `{"identifier":"missing"}`, "")
	if resp.StatusCode != 0 || string(resp.Data) != "null" {
		t.Fatalf("bySlug miss should return null, got %d %s", resp.StatusCode, string(resp.Data))
	}

	cookie := registerUser(t, r, "cart@example.com")

	resp, _ = callMutation(t, r, constants.ProcCartAddToCart, fmt.Sprintf(`{"product_id":%d,"quantity":1}`, product.ID), cookie)
	if resp.StatusCode != 409 {
		t.Fatalf("below minimum status_code want 409 got %d", resp.StatusCode)
	}
	if msg := decodeMutation(t, resp).Message; msg != "Minimum order quantity for Samsung Galaxy S10e is 2." {
		t.Fatalf("unexpected message: %s", msg)
	}

	resp, _ = callMutation(t, r, constants.ProcCartAddToCart, fmt.Sprintf(`{"product_id":%d,"quantity":11}`, product.ID), cookie)
	if resp.StatusCode != 409 {
		t.Fatalf("over stock status_code want 409 got %d", resp.StatusCode)
	}
	if msg := decodeMutation(t, resp).Message; msg != "Insufficient stock for Samsung Galaxy S10e. Available: 10" {
		t.Fatalf("unexpected message: %s", msg)
	}

	resp, _ = callMutation(t, r, constants.ProcCartAddToCart, fmt.Sprintf(`{"product_id":%d,"quantity":3}`, product.ID), cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("addToCart status_code want 0 got %d", resp.StatusCode)
	}
	if data := decodeMutation(t, resp); !data.Success || data.Message != "Product added to cart successfully!" {
		t.Fatalf("unexpected add data: %+v", data)
	}

	resp = callQuery(t, r, constants.ProcCartGetCart, "", cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("getCart status_code want 0 got %d", resp.StatusCode)
	}
	var cart struct {
		Items []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	if err := json.Unmarshal(resp.Data, &cart); err != nil {
		t.Fatalf("unmarshal cart failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	var stock int
	if err := c.DB.Model(&models.Product{}).Where("id = ?", product.ID).Pluck("stock_quantity", &stock).Error; err != nil {
		t.Fatalf("load stock failed: %v", err)
	}
	if stock != 7 {
		t.Fatalf("stock want 7 got %d", stock)
	}
}

func TestAdminProceduresWithRBAC(t *testing.T) {
	r, c := setupRouterTest(t, func(cfg *config.Config) {
		cfg.Security.AdminRBAC.Enabled = true
	})
	category := &models.Category{Slug: "new-phones", Name: "New Phones"}
	if err := c.DB.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	body := fmt.Sprintf(`{"sku":"PH1","slug":"pixel-8","name":"Pixel 8","price":"499.00","stock_quantity":5,"minimum_order_quantity":1,"is_active":true,"category_id":%d}`, category.ID)

	resp, _ := callMutation(t, r, constants.ProcProductCreate, body, "")
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous create status_code want 401 got %d", resp.StatusCode)
	}

	cookie := registerUser(t, r, "manager@example.com")
	resp, _ = callMutation(t, r, constants.ProcProductCreate, body, cookie)
	if resp.StatusCode != 403 {
		t.Fatalf("no role create status_code want 403 got %d", resp.StatusCode)
	}

	user, err := c.Store.Users.GetByEmail("manager@example.com")
	if err != nil || user == nil {
		t.Fatalf("load user failed: %v", err)
	}
	if err := c.AuthzService.AssignUserRole(user.ID, constants.AuthzRoleCatalogManager); err != nil {
		t.Fatalf("assign role failed: %v", err)
	}

	resp, _ = callMutation(t, r, constants.ProcProductCreate, body, cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("manager create status_code want 0 got %d %s", resp.StatusCode, string(resp.Data))
	}
	resp = callQuery(t, r, constants.ProcAdminProductList, "", cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("admin list status_code want 0 got %d", resp.StatusCode)
	}
}

func TestAdminProceduresOpenWithoutRBAC(t *testing.T) {
	r, _ := setupRouterTest(t, nil)

	resp, _ := callMutation(t, r, constants.ProcCategoryUpsert, `{"slug":"used-phones","name":"Used Phones"}`, "")
	if resp.StatusCode != 0 {
		t.Fatalf("upsert status_code want 0 got %d %s", resp.StatusCode, string(resp.Data))
	}
	resp = callQuery(t, r, constants.ProcProductCategories, "", "")
	if resp.StatusCode != 0 || !strings.Contains(string(resp.Data), "used-phones") {
		t.Fatalf("categories should include upserted slug, got %s", string(resp.Data))
	}
}

func TestCartUpdateAndRemoveItem(t *testing.T) {
	r, c := setupRouterTest(t, nil)
	category := &models.Category{Slug: "ios-iphone", Name: "iOS (iPhone)"}
	if err := c.DB.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := &models.Product{
		CategoryID:           category.ID,
		SKU:                  "PH51920252",
		Slug:                 "iphone-11-pro-max",
		Name:                 "Iphone 11 Pro Max",
		Price:                models.MustMoney("420"),
		StockQuantity:        10,
		MinimumOrderQuantity: 2,
		IsActive:             true,
	}
	if err := c.DB.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	loadStock := func() int {
		var stock int
		if err := c.DB.Model(&models.Product{}).Where("id = ?", product.ID).Pluck("stock_quantity", &stock).Error; err != nil {
			t.Fatalf("load stock failed: %v", err)
		}
		return stock
	}

	cookie := registerUser(t, r, "lines@example.com")
	resp, _ := callMutation(t, r, constants.ProcCartRemoveItem, fmt.Sprintf(`{"product_id":%d}`, product.ID), cookie)
	if resp.StatusCode != 404 || decodeMutation(t, resp).Message != "Cart item not found." {
		t.Fatalf("remove without line want 404, got %d %s", resp.StatusCode, string(resp.Data))
	}

	resp, _ = callMutation(t, r, constants.ProcCartAddToCart, fmt.Sprintf(`{"product_id":%d,"quantity":4}`, product.ID), cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("addToCart status_code want 0 got %d", resp.StatusCode)
	}

	resp, _ = callMutation(t, r, constants.ProcCartUpdateItem, fmt.Sprintf(`{"product_id":%d,"quantity":6}`, product.ID), cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("updateItem status_code want 0 got %d", resp.StatusCode)
	}
	if data := decodeMutation(t, resp); !data.Success || data.Message != "Cart item updated successfully!" {
		t.Fatalf("unexpected update data: %+v", data)
	}
	if got := loadStock(); got != 4 {
		t.Fatalf("stock after growing line want 4 got %d", got)
	}

	resp, _ = callMutation(t, r, constants.ProcCartUpdateItem, fmt.Sprintf(`{"product_id":%d,"quantity":1}`, product.ID), cookie)
	if resp.StatusCode != 409 {
		t.Fatalf("below minimum update want 409 got %d", resp.StatusCode)
	}

	resp, _ = callMutation(t, r, constants.ProcCartUpdateItem, fmt.Sprintf(`{"product_id":%d,"quantity":0}`, product.ID), cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("updateItem to zero status_code want 0 got %d", resp.StatusCode)
	}
	if data := decodeMutation(t, resp); !data.Success || data.Message != "Cart item removed successfully!" {
		t.Fatalf("unexpected zero update data: %+v", data)
	}
	if got := loadStock(); got != 10 {
		t.Fatalf("stock after zero update want 10 got %d", got)
	}

	resp, _ = callMutation(t, r, constants.ProcCartAddToCart, fmt.Sprintf(`{"product_id":%d,"quantity":2}`, product.ID), cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("second addToCart status_code want 0 got %d", resp.StatusCode)
	}
	resp, _ = callMutation(t, r, constants.ProcCartRemoveItem, fmt.Sprintf(`{"product_id":%d}`, product.ID), cookie)
	if resp.StatusCode != 0 {
		t.Fatalf("removeItem status_code want 0 got %d", resp.StatusCode)
	}
	if got := loadStock(); got != 10 {
		t.Fatalf("stock after remove want 10 got %d", got)
	}
	resp, _ = callMutation(t, r, constants.ProcCartRemoveItem, fmt.Sprintf(`{"product_id":%d}`, product.ID), cookie)
	if resp.StatusCode != 404 {
		t.Fatalf("second remove want 404 got %d", resp.StatusCode)
	}

	resp = callQuery(t, r, constants.ProcCartGetCart, "", cookie)
	var cart struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(resp.Data, &cart); err != nil {
		t.Fatalf("unmarshal cart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty, got %d items", len(cart.Items))
	}
}
