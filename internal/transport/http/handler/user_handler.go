package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"nextgen-training/internal/service"
	httpez "nextgen-training/internal/transport/http/ez"
	resp "nextgen-training/internal/transport/http/response"
)

type UserService interface {
	Register(ctx context.Context, in service.RegisterInput) resp.Envelope
	Login(ctx context.Context, in service.LoginInput) resp.Envelope
	FindAll(ctx context.Context) resp.Envelope
	FindOne(id int) string
	Update(id int, in service.UpdateInput) string
	Remove(id int) string
}

type UserHandler struct{ svc UserService }

func NewUserHandler(svc UserService) *UserHandler { return &UserHandler{svc: svc} }

// MountAPI /api/v1/users*
func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api.Group("/users"))

	httpez.POST(ez, "", h.Register)
	httpez.POST(ez, "/login", h.Login)
	ez.GET("", h.FindAll)
	ez.GETID("/:id", h.FindOne)
	httpez.PATCHID(ez, "/:id", h.Update)
	ez.DELETEID("/:id", h.Remove)
}

// MountAdmin /admin/v1/users，分组已校验 admin
func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	httpez.New(admin).GET("/users", h.FindAll)
}

func (h *UserHandler) Register(c *gin.Context, in service.RegisterInput) resp.Envelope {
	return h.svc.Register(c.Request.Context(), in)
}

func (h *UserHandler) Login(c *gin.Context, in service.LoginInput) resp.Envelope {
	return h.svc.Login(c.Request.Context(), in)
}

func (h *UserHandler) FindAll(c *gin.Context) resp.Envelope {
	return h.svc.FindAll(c.Request.Context())
}

func (h *UserHandler) FindOne(_ *gin.Context, id int) string { return h.svc.FindOne(id) }

func (h *UserHandler) Update(_ *gin.Context, id int, in service.UpdateInput) string {
	return h.svc.Update(id, in)
}

func (h *UserHandler) Remove(_ *gin.Context, id int) string { return h.svc.Remove(id) }
