package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/wholesale-phone/internal/cache"
	"github.com/wholesale-phone/internal/config"
	"github.com/wholesale-phone/internal/constants"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/models"
	"github.com/wholesale-phone/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionUser 当前会话用户
type SessionUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionTicket 登录/注册签发的会话凭证
type SessionTicket struct {
	User      SessionUser
	Token     string
	ExpiresAt time.Time
}

// IdentityProvider 会话身份提供方
type IdentityProvider interface {
	GetSession(ctx context.Context, token string) (*SessionUser, error)
	SignIn(ctx context.Context, email, password string) (*SessionTicket, error)
	SignUp(ctx context.Context, email, password, name string) (*SessionTicket, error)
	SignOut(ctx context.Context, userID uint) error
}

// UserAuthService 用户认证服务（基于 JWT 的会话提供方）
type UserAuthService struct {
	cfg   *config.Config
	store *repository.Store
	cache *cache.Client
}

var _ IdentityProvider = (*UserAuthService)(nil)

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, store *repository.Store, cacheClient *cache.Client) *UserAuthService {
	return &UserAuthService{cfg: cfg, store: store, cache: cacheClient}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	hours := s.cfg.Session.ExpireHours
	if hours <= 0 {
		hours = 168
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.Session.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Session.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetSession 校验会话 Token，返回当前用户
func (s *UserAuthService) GetSession(ctx context.Context, token string) (*SessionUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalid
	}
	claims, err := s.ParseUserJWT(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	state, hit, cacheErr := s.cache.GetUserAuthState(ctx, claims.UserID)
	if cacheErr != nil || !hit || state == nil {
		user, err := s.store.WithContext(ctx).Users.GetByID(claims.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrSessionInvalid
		}
		state = cache.BuildUserAuthState(user)
		if err := s.cache.SetUserAuthState(ctx, state); err != nil {
			logger.FromContext(ctx).Debugw("auth_state_cache_set_failed", "user_id", user.ID, "error", err)
		}
	}
	if !isActiveUserStatus(state.Status) {
		return nil, ErrUserDisabled
	}
	if claims.TokenVersion != state.TokenVersion || !isIssuedAfterInvalidBefore(claims.IssuedAt, state.TokenInvalidBefore) {
		return nil, ErrSessionInvalid
	}
	return &SessionUser{ID: claims.UserID, Name: claims.Name, Email: claims.Email}, nil
}

// SignUp 注册并签发会话
func (s *UserAuthService) SignUp(ctx context.Context, email, password, name string) (*SessionTicket, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return nil, err
	}
	store := s.store.WithContext(ctx)
	exist, err := store.Users.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = resolveNameFromEmail(normalized)
	}
	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hashedPassword),
		Name:         displayName,
		Status:       constants.UserStatusActive,
		LastLoginAt:  &now,
	}
	if err := store.Users.Create(user); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Infow("auth_user_registered", "user_id", user.ID)
	if err := s.cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.FromContext(ctx).Debugw("auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	return s.issue(user)
}

// SignIn 邮箱密码登录
func (s *UserAuthService) SignIn(ctx context.Context, email, password string) (*SessionTicket, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	store := s.store.WithContext(ctx)
	user, err := store.Users.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !isActiveUserStatus(user.Status) {
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := store.Users.UpdateLastLogin(user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return s.issue(user)
}

// SignOut 使用户已签发的全部会话失效
func (s *UserAuthService) SignOut(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrSessionInvalid
	}
	if err := s.store.WithContext(ctx).Users.RevokeTokens(userID, time.Now()); err != nil {
		return err
	}
	if err := s.cache.DelUserAuthState(ctx, userID); err != nil {
		logger.FromContext(ctx).Warnw("auth_state_cache_del_failed", "user_id", userID, "error", err)
	}
	logger.FromContext(ctx).Infow("auth_user_signed_out", "user_id", userID)
	return nil
}

func (s *UserAuthService) issue(user *models.User) (*SessionTicket, error) {
	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, err
	}
	return &SessionTicket{
		User:      SessionUser{ID: user.ID, Name: user.Name, Email: user.Email},
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func isIssuedAfterInvalidBefore(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.EqualFold(strings.TrimSpace(status), constants.UserStatusActive)
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func resolveNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
