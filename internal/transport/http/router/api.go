package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"nextgen-training/internal/core/server"
	mdw "nextgen-training/internal/transport/http/middleware"
)

type Options struct {
	Mode         string
	RPS          float64
	Burst        int
	Concurrency  int64
	MaxBodyBytes int64
	Timeout      time.Duration
	Metrics      *mdw.Metrics        // 可为 nil
	Gatherer     prometheus.Gatherer // 非 nil 时挂 /metrics
}

func (o Options) chain(l *zap.Logger) []gin.HandlerFunc {
	hs := []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(o.RPS), o.Burst),
		mdw.ConcurrencyLimit(o.Concurrency),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.Timeout),
	}
	if o.Metrics != nil {
		hs = append(hs, o.Metrics.Handler())
	}
	return append(hs, mdw.AccessLog(l))
}

func health(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) }

func (o Options) mountOps(r *gin.Engine) {
	r.GET("/health", health)
	if o.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{})))
	}
}

func NewAPIEngine(l *zap.Logger, o Options, mods *Modules) *gin.Engine {
	r := server.NewRouter(l, o.Mode)
	r.Use(o.chain(l)...)

	// 健康检查 / 指标
	o.mountOps(r)

	// 前缀
	api := r.Group("/api/v1")
	mods.MountAllAPI(api)

	return r
}
