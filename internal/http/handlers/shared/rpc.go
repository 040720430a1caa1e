package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/wholesale-phone/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RPCInputParam 查询类过程的输入参数名
const RPCInputParam = "input"

const msgInvalidInput = "Invalid request body"

var jsonFieldNamesOnce sync.Once

// BindQueryInput 解析查询类过程 ?input= 中的 JSON 并校验，缺省时按零值校验
func BindQueryInput(c *gin.Context, dest interface{}) error {
	useJSONFieldNames()
	raw := strings.TrimSpace(c.Query(RPCInputParam))
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), dest); err != nil {
			return response.WrapError(response.CodeBadRequest, msgInvalidInput, err)
		}
	}
	if err := binding.Validator.ValidateStruct(dest); err != nil {
		return response.WrapError(response.CodeBadRequest, SanitizeValidationError(err), err)
	}
	return nil
}

// BindQueryString 读取查询类过程的字符串输入，兼容 JSON 字符串、{"identifier": ...} 与裸值
func BindQueryString(c *gin.Context, field string) (string, error) {
	raw := strings.TrimSpace(c.Query(RPCInputParam))
	if raw == "" {
		return "", response.WrapError(response.CodeBadRequest, field+" is required", nil)
	}
	var value string
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value, nil
	}
	var object map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &object); err == nil {
		if v, ok := object[field].(string); ok {
			return v, nil
		}
		return "", response.WrapError(response.CodeBadRequest, field+" is required", nil)
	}
	return raw, nil
}

// BindMutationInput 解析变更类过程的 JSON 请求体并校验
func BindMutationInput(c *gin.Context, dest interface{}) error {
	useJSONFieldNames()
	if err := c.ShouldBindJSON(dest); err != nil {
		return response.WrapError(response.CodeBadRequest, SanitizeValidationError(err), err)
	}
	return nil
}

// SanitizeValidationError 生成不暴露内部结构体名的校验提示
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return msgInvalidInput
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, "This is not a valid email.")
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	if len(messages) == 0 {
		return msgInvalidInput
	}
	return strings.Join(messages, "; ")
}

func useJSONFieldNames() {
	jsonFieldNamesOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}
