package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nextgen-training/internal/core/server"
	mdw "nextgen-training/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, o Options, jwter mdw.TokenParser, mods *Modules) *gin.Engine {
	r := server.NewRouter(l, o.Mode)
	r.Use(o.chain(l)...)

	o.mountOps(r)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))
	mods.MountAllAdmin(admin)

	return r
}
