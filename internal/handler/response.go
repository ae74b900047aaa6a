package handler

import (
	"net/http"

	"github.com/fundlab/mfs/internal/apperr"
	"github.com/fundlab/mfs/internal/logger"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// FailWith 业务错误映射为HTTP响应
func FailWith(c *gin.Context, err error) {
	e := apperr.AsError(err)
	if e == nil {
		logger.Error("Internal error: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "INTERNAL", "服务内部错误")
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusForbidden
	case apperr.KindInvalidArgument:
		status = http.StatusBadRequest
	case apperr.KindPreconditionFailed:
		status = http.StatusConflict
	case apperr.KindInvariantViolation:
		status = http.StatusInternalServerError
	}

	ErrorResponse(c, status, e.Code, e.Message)
}
