package public

import (
	"net/http"
	"time"

	handlershared "github.com/wholesale-phone/internal/http/handlers/shared"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// SessionResponse 当前会话响应
type SessionResponse struct {
	Message string               `json:"message"`
	User    *service.SessionUser `json:"user"`
}

// GetSession 获取当前会话用户
func (h *Handler) GetSession(c *gin.Context) {
	user, ok := requireSessionUser(c)
	if !ok {
		return
	}
	response.Success(c, SessionResponse{
		Message: "User Authenticated!",
		User:    user,
	})
}

// Login 邮箱密码登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}

	ticket, err := h.UserAuthService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondMutationError(c, err)
		return
	}
	h.setSessionCookie(c, ticket)
	handlershared.RequestLog(c).Infow("auth_user_login", "user_id", ticket.User.ID)
	response.Success(c, response.MutationResult{Success: true, Message: "User authenticated!"})
}

// Register 注册并登录
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := handlershared.BindMutationInput(c, &req); err != nil {
		respondMutationError(c, err)
		return
	}

	ticket, err := h.UserAuthService.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondMutationError(c, err)
		return
	}
	h.setSessionCookie(c, ticket)
	response.Success(c, response.MutationResult{Success: true, Message: "User registered!"})
}

// Logout 注销当前用户全部会话并清除 Cookie
func (h *Handler) Logout(c *gin.Context) {
	user, ok := requireSessionUser(c)
	if !ok {
		return
	}
	if err := h.UserAuthService.SignOut(c.Request.Context(), user.ID); err != nil {
		respondMutationError(c, err)
		return
	}
	h.clearSessionCookie(c)
	response.Success(c, response.MutationResult{Success: true, Message: "Logged out successfully!"})
}

func (h *Handler) setSessionCookie(c *gin.Context, ticket *service.SessionTicket) {
	maxAge := int(time.Until(ticket.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	session := h.Config.Session
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, ticket.Token, maxAge, "/", session.CookieDomain, session.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	session := h.Config.Session
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", session.CookieDomain, session.CookieSecure, true)
}
