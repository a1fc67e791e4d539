package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	resp "nextgen-training/internal/transport/http/response"
)

// 限流类中间件；参数 <= 0 一律视为关闭

func pass(c *gin.Context) { c.Next() }

// reject 中断请求，业务码写进信封，响应行保持 200
func reject(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(http.StatusOK, resp.Failure(code, msg))
}

// RateLimit 全局令牌桶
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return pass
	}
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			reject(c, resp.CodeTooMany, "too many requests")
			return
		}
		c.Next()
	}
}

// ConcurrencyLimit 同时在处理的请求数上限（保护 DB）；排队受请求 ctx 约束。
// websocket 升级请求不计入，长连接由网关自己的上限控制
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return pass
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if c.IsWebsocket() {
			c.Next()
			return
		}
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			reject(c, resp.CodeUnavailable, "server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

// MaxBodyBytes 超限时绑定报错，由 ez 返回 400
func MaxBodyBytes(n int64) gin.HandlerFunc {
	if n <= 0 {
		return pass
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

// Timeout 给请求 ctx 加截止时间；handler 没写响应时补一个 504 信封
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return pass
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			reject(c, resp.CodeTimeout, "timeout")
		}
	}
}
