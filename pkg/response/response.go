package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 业务码：0 成功，其余与 HTTP 状态对齐便于前端处理
const (
	CodeOK = 0
)

func write(c *gin.Context, status int, message string, data interface{}) {
	code := CodeOK
	if status >= http.StatusBadRequest {
		code = status
	}
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, "success", data)
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, "created", data)
}

func BadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	write(c, http.StatusUnauthorized, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	write(c, http.StatusForbidden, message, nil)
}

func NotFound(c *gin.Context, message string) {
	write(c, http.StatusNotFound, message, nil)
}

func Conflict(c *gin.Context, message string) {
	write(c, http.StatusConflict, message, nil)
}

// Unprocessable 422，业务规则拒绝（余额不足、菜品下架等）
func Unprocessable(c *gin.Context, message string) {
	write(c, http.StatusUnprocessableEntity, message, nil)
}

func TooManyRequests(c *gin.Context) {
	write(c, http.StatusTooManyRequests, "too many requests", nil)
}

func ServiceUnavailable(c *gin.Context, message string) {
	write(c, http.StatusServiceUnavailable, message, nil)
}

// InternalError 500，不向客户端暴露底层错误
func InternalError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	write(c, http.StatusInternalServerError, "internal server error", nil)
}

// Abort 写出响应并中止后续 handler
func Abort(c *gin.Context, status int, message string) {
	write(c, status, message, nil)
	c.Abort()
}

// Fail 业务失败：message 给人看，reason 给前端判断
func Fail(c *gin.Context, status int, reason, message string) {
	write(c, status, message, gin.H{"reason": reason})
}
