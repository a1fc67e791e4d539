package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 模块可选择实现其中一个或两个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Modules 按类型断言分发到 API/Admin 列表
type Modules struct {
	api   []APIModule
	admin []AdminModule
}

func NewModules(mods ...any) *Modules {
	m := &Modules{}
	for _, mod := range mods {
		m.Register(mod)
	}
	return m
}

func (m *Modules) Register(mod any) {
	if v, ok := mod.(APIModule); ok {
		m.api = append(m.api, v)
	}
	if v, ok := mod.(AdminModule); ok {
		m.admin = append(m.admin, v)
	}
}

func (m *Modules) MountAllAPI(api *gin.RouterGroup) {
	mods := append([]APIModule(nil), m.api...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, mod := range mods {
		mod.MountAPI(api)
	}
}

func (m *Modules) MountAllAdmin(admin *gin.RouterGroup) {
	mods := append([]AdminModule(nil), m.admin...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, mod := range mods {
		mod.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
