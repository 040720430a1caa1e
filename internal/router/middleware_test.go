package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wholesale-phone/internal/config"
	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
)

func TestBuildCORSConfig(t *testing.T) {
	cfg := buildCORSConfig(config.CORSConfig{AllowedOrigins: []string{"*"}})
	if !cfg.AllowAllOrigins {
		t.Fatalf("wildcard without credentials should allow all origins")
	}

	cfg = buildCORSConfig(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})
	if cfg.AllowAllOrigins || cfg.AllowOriginFunc == nil {
		t.Fatalf("wildcard with credentials should echo origin")
	}

	cfg = buildCORSConfig(config.CORSConfig{AllowedOrigins: []string{"https://a.example.com/", "bad-origin"}})
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "https://a.example.com" {
		t.Fatalf("allow-list should keep valid origins, got %v", cfg.AllowOrigins)
	}
	if len(cfg.AllowMethods) == 0 || len(cfg.AllowHeaders) == 0 {
		t.Fatalf("default methods and headers should be filled")
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}, AllowCredentials: true}))
	r.POST("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status want 204 got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow origin want http://localhost:3000 got %s", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("credentials header should be true")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		ctxLogger := logger.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c), "has_logger": ctxLogger != nil})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.RequestID != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp.RequestID)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestReadSessionToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer header-token")
	if got := readSessionToken(c, "wp_session"); got != "header-token" {
		t.Fatalf("bearer token want header-token got %s", got)
	}

	c.Request.AddCookie(&http.Cookie{Name: "wp_session", Value: "cookie-token"})
	if got := readSessionToken(c, "wp_session"); got != "cookie-token" {
		t.Fatalf("cookie should take precedence, got %s", got)
	}

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Basic abc")
	if got := readSessionToken(c, "wp_session"); got != "" {
		t.Fatalf("non-bearer header should be ignored, got %s", got)
	}
}

func TestAdminGateOpenWhenDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin", AdminGate(false, nil, "admin.product.list"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("gate should be open when rbac disabled, got %s", w.Body.String())
	}
}

func TestAdminGateRequiresSessionWhenEnabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin", AdminGate(true, nil, "admin.product.list"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminGateDeniesWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		handlershared.SetSessionUser(c, &service.SessionUser{ID: 7})
		c.Next()
	})
	r.POST("/admin", AdminGate(true, nil, "product.create"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(`{}`)))
	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 403 || resp.Data.Success || resp.Data.Message != handlershared.MsgForbidden {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

// stubIdentity 只实现 GetSession 的身份提供方
type stubIdentity struct {
	service.IdentityProvider
	user *service.SessionUser
	err  error
}

func (s *stubIdentity) GetSession(context.Context, string) (*service.SessionUser, error) {
	return s.user, s.err
}

func TestSessionMiddlewareErrorHandling(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		method     string
		provider   *stubIdentity
		wantCode   int
		wantUserID uint
	}{
		{name: "valid session", method: http.MethodGet, provider: &stubIdentity{user: &service.SessionUser{ID: 5}}, wantCode: 0, wantUserID: 5},
		{name: "revoked token is anonymous", method: http.MethodGet, provider: &stubIdentity{err: service.ErrSessionInvalid}, wantCode: 0},
		{name: "disabled user is anonymous", method: http.MethodPost, provider: &stubIdentity{err: service.ErrUserDisabled}, wantCode: 0},
		{name: "store failure on query", method: http.MethodGet, provider: &stubIdentity{err: errors.New("connection refused")}, wantCode: 500},
		{name: "store failure on mutation", method: http.MethodPost, provider: &stubIdentity{err: errors.New("connection refused")}, wantCode: 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(SessionMiddleware("wp_session", tc.provider))
			r.Handle(tc.method, "/proc", func(c *gin.Context) {
				var userID uint
				if user, ok := handlershared.GetSessionUser(c); ok {
					userID = user.ID
				}
				c.JSON(http.StatusOK, gin.H{"status_code": 0, "data": gin.H{"user_id": userID}})
			})

			req := httptest.NewRequest(tc.method, "/proc", strings.NewReader(`{}`))
			req.Header.Set("Authorization", "Bearer some-token")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var resp struct {
				StatusCode int `json:"status_code"`
				Data       struct {
					UserID  uint   `json:"user_id"`
					Success bool   `json:"success"`
					Message string `json:"message"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response failed: %v", err)
			}
			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status_code want %d got %d body=%s", tc.wantCode, resp.StatusCode, w.Body.String())
			}
			if tc.wantCode == 0 && resp.Data.UserID != tc.wantUserID {
				t.Fatalf("user_id want %d got %d", tc.wantUserID, resp.Data.UserID)
			}
			if tc.wantCode == 500 && tc.method == http.MethodPost {
				if resp.Data.Success || resp.Data.Message != handlershared.MsgInternal {
					t.Fatalf("unexpected mutation failure body: %s", w.Body.String())
				}
			}
		})
	}
}
