// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 生成链路错误类型
	ErrorTypeConfiguration      ErrorType = "configuration_error"
	ErrorTypeTransport          ErrorType = "transport_failure"
	ErrorTypeMalformedResponse  ErrorType = "malformed_response"
	ErrorTypeNoImageProduced    ErrorType = "no_image_produced"
	ErrorTypeInvalidProjectFile ErrorType = "invalid_project_file"

	// 通用错误类型
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
)

// AppError 应用程序错误结构
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string // 用户友好的错误代码
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap 实现错误链接
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError 创建新的 AppError
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewConfigurationError 缺失或无效的凭证，属于致命错误，不可重试
func NewConfigurationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, originalError)
}

// NewTransportFailure 远端服务的网络/鉴权/配额故障，可由调用方重试
func NewTransportFailure(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTransport, message, originalError)
}

// NewMalformedResponse 响应为空、非JSON或缺少必需字段
func NewMalformedResponse(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeMalformedResponse, message, originalError)
}

// NewNoImageProduced 图像请求成功返回但不含任何图像数据
func NewNoImageProduced(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNoImageProduced, message, originalError)
}

// NewInvalidProjectFile 导入文档未通过最小形状校验
func NewInvalidProjectFile(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeInvalidProjectFile, message, originalError)
}

// NewValidationError 创建验证错误
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewConflictError 创建冲突错误
func NewConflictError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConflict, message, originalError)
}

// isType 检查错误链中是否存在指定类型的 AppError
func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

// IsConfigurationError 检查是否为配置错误
func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsTransportFailure 检查是否为传输故障
func IsTransportFailure(err error) bool {
	return isType(err, ErrorTypeTransport)
}

// IsMalformedResponse 检查是否为响应格式错误
func IsMalformedResponse(err error) bool {
	return isType(err, ErrorTypeMalformedResponse)
}

// IsNoImageProduced 检查是否为无图像错误
func IsNoImageProduced(err error) bool {
	return isType(err, ErrorTypeNoImageProduced)
}

// IsInvalidProjectFile 检查是否为项目文件无效错误
func IsInvalidProjectFile(err error) bool {
	return isType(err, ErrorTypeInvalidProjectFile)
}

// IsNotFoundError 检查是否为未找到错误
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsConflictError 检查是否为冲突错误
func IsConflictError(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsValidationError 检查是否为验证错误
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// generateErrorCode 根据错误类型生成错误代码
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeTransport:
		return "TRANSPORT_FAILURE"
	case ErrorTypeMalformedResponse:
		return "MALFORMED_RESPONSE"
	case ErrorTypeNoImageProduced:
		return "NO_IMAGE_PRODUCED"
	case ErrorTypeInvalidProjectFile:
		return "INVALID_PROJECT_FILE"
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeConflict:
		return "CONFLICT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError 包装现有错误
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// 如果已经是 AppError，保留原有类型，只追加消息
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
