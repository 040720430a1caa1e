package shared

import (
	"errors"

	"github.com/wholesale-phone/internal/constants"
	"github.com/wholesale-phone/internal/http/response"
	"github.com/wholesale-phone/internal/logger"
	"github.com/wholesale-phone/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 通用提示
const (
	MsgUnauthorized = "Unauthorized."
	MsgForbidden    = "Forbidden."
	MsgInternal     = "Internal server error"
	MsgTooManyReqs  = "Too many requests, please try again later."
)

// MappedError 业务错误到接口错误响应的映射
type MappedError struct {
	Target  error
	Code    int
	Message string
}

// DefaultErrorRules 服务层哨兵错误的统一映射
var DefaultErrorRules = []MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Message: "User not found. Cannot create cart."},
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Message: "Product not found."},
	{Target: service.ErrCategoryNotFound, Code: response.CodeNotFound, Message: "Category not found."},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Message: "Cart item not found."},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Message: "Not found."},
	{Target: service.ErrInvalidQuantity, Code: response.CodeBadRequest, Message: "Quantity must be a positive integer."},
	{Target: service.ErrInvalidProductInput, Code: response.CodeBadRequest, Message: "Invalid product payload."},
	{Target: service.ErrInvalidCategoryInput, Code: response.CodeBadRequest, Message: "Invalid category payload."},
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Message: "This is not a valid email."},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Message: "Password does not meet the policy."},
	{Target: service.ErrSKUExists, Code: response.CodeConflict, Message: "A product with this SKU already exists."},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Message: "User already exists."},
	{Target: service.ErrBelowMinimumOrder, Code: response.CodeConflict, Message: "Quantity is below the minimum order."},
	{Target: service.ErrInsufficientStock, Code: response.CodeConflict, Message: "Insufficient stock."},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Message: "Invalid email or password."},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Message: "This account has been disabled."},
	{Target: service.ErrSessionInvalid, Code: response.CodeUnauthorized, Message: MsgUnauthorized},
}

// messenger 自带面向调用方提示的错误
type messenger interface {
	Message() string
}

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if c.Request != nil {
		return logger.FromContext(c.Request.Context())
	}
	if requestID, ok := c.Get(constants.ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// ResolveError 将服务层错误转换为响应码与提示，未识别的错误归为 500
func ResolveError(err error, rules []MappedError) (int, string) {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}
	code := response.CodeInternal
	msg := MsgInternal
	matched := false
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			code, msg, matched = rule.Code, rule.Message, true
			break
		}
	}
	if !matched {
		return code, msg
	}
	var m messenger
	if errors.As(err, &m) && m.Message() != "" {
		msg = m.Message()
	}
	return code, msg
}

// RespondError 返回查询类错误响应，500 时记录原始错误。
func RespondError(c *gin.Context, err error) {
	code, msg := ResolveError(err, DefaultErrorRules)
	logHandlerError(c, code, msg, err)
	response.Error(c, code, msg)
}

// RespondMutationError 返回变更类错误响应，data 为 {success:false, message}。
func RespondMutationError(c *gin.Context, err error) {
	code, msg := ResolveError(err, DefaultErrorRules)
	logHandlerError(c, code, msg, err)
	response.MutationFailure(c, code, msg)
}

func logHandlerError(c *gin.Context, code int, msg string, err error) {
	if err == nil {
		return
	}
	if code >= response.CodeInternal {
		RequestLog(c).Errorw("handler_error", "code", code, "message", msg, "error", err)
		return
	}
	RequestLog(c).Debugw("handler_rejected", "code", code, "message", msg, "error", err)
}
