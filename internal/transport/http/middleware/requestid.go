package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nextgen-training/internal/core/logger"
)

const KeyRequestID = "X-Request-ID"

const maxRequestIDLen = 64

// validRequestID 只接受 [A-Za-z0-9._-]，防止日志注入
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		ch := rid[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}

// RequestID 沿用上游合法的 id，否则生成 uuid；同时写入响应头、gin ctx 和 request ctx
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Header(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
