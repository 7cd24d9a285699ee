package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"stratools/internal/app/pkg/errorx"
)

// Response 统一响应结构
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 元数据
type Meta struct {
	Code    string        `json:"code" example:"OK"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string `json:"path" example:"name"`
	Info string `json:"info" example:"name is required"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{Code: "OK", Message: "OK"},
		Data: data,
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Meta: Meta{Code: "OK", Message: "Created"},
		Data: data,
	})
}

// Error 将业务错误映射为 HTTP 响应，未知错误视为 500
func Error(c *gin.Context, err error) {
	be := errorx.From(err)
	details := make([]ErrorDetail, 0, len(be.Details))
	for _, d := range be.Details {
		details = append(details, ErrorDetail{Path: d.Path, Info: d.Info})
	}
	if be.Code == errorx.CodeInternal {
		// 内部错误只记录，不把存储层信息返回给调用方
		_ = c.Error(err)
	}
	Abort(c, be.Status, be.Code, be.Message, details)
}

// Abort 输出错误响应并中断后续 handler
func Abort(c *gin.Context, httpCode int, code, message string, details []ErrorDetail) {
	c.AbortWithStatusJSON(httpCode, Response{
		Meta: Meta{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// BadRequestWithValidation 400 错误（带验证详情）
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Field(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		Abort(c, http.StatusBadRequest, errorx.CodeValidation, "Validation failed", details)
		return
	}

	Abort(c, http.StatusBadRequest, errorx.CodeValidation, err.Error(), nil)
}

// getValidationErrorMessage 根据验证错误类型返回友好的错误消息
func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	case "oneof":
		return fieldErr.Field() + " must be one of " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
