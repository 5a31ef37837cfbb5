package responder

import (
	apperrors "github.com/leeforge/mediaserve/errors"
)

// HTTP 状态码相关的错误码
const (
	// 4xxx - 客户端错误
	ErrCodeBadRequest       = 4000 // 请求格式错误
	ErrCodeValidationFailed = 4002 // 数据验证失败
	ErrCodeNotFound         = 4003 // 资源不存在
	ErrCodeRouteNotFound    = 4004 // 路由不存在
	ErrCodeMethodNotAllowed = 4005

	// 5xxx - 服务端错误
	ErrCodeInternalServer = 5000 // 内部服务器错误
	ErrCodeStorageService = 5004 // 存储服务错误
	ErrCodeIO             = 5007 // 图片解码/编码失败
	ErrCodeBlocking       = 5008 // 后台任务失败
)

// 错误消息映射
var errorMessages = map[int]string{
	ErrCodeBadRequest:       "Bad Request",
	ErrCodeValidationFailed: "Validation Failed",
	ErrCodeNotFound:         "Resource Not Found",
	ErrCodeRouteNotFound:    "Route Not Found",
	ErrCodeMethodNotAllowed: "Method Not Allowed",
	ErrCodeInternalServer:   "Internal Server Error",
	ErrCodeStorageService:   "Storage Service Error",
	ErrCodeIO:               "I/O Error",
	ErrCodeBlocking:         "Blocking Task Failed",
}

var typeCodes = map[apperrors.ErrorType]int{
	apperrors.ErrorTypeBadRequest: ErrCodeBadRequest,
	apperrors.ErrorTypeNotFound:   ErrCodeNotFound,
	apperrors.ErrorTypeStorage:    ErrCodeStorageService,
	apperrors.ErrorTypeTranscode:  ErrCodeIO,
	apperrors.ErrorTypeBlocking:   ErrCodeBlocking,
	apperrors.ErrorTypeInternal:   ErrCodeInternalServer,
}

// GetErrorMessage returns the default message for an error code
func GetErrorMessage(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Unknown Error"
}

// NewError creates a new Error with code and message
func NewError(code int, message string) Error {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return Error{
		Code:    code,
		Message: message,
	}
}

// CodeFor maps an application error type to its envelope code.
func CodeFor(t apperrors.ErrorType) int {
	if code, ok := typeCodes[t]; ok {
		return code
	}
	return ErrCodeInternalServer
}
