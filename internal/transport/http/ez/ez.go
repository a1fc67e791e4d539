package ez

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	resp "nextgen-training/internal/transport/http/response"
)

// 轻封装：入参绑定 + 信封/文本输出。业务码写在信封里，响应行状态码按方法固定

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

func (e EZ) GET(path string, h func(c *gin.Context) resp.Envelope) {
	e.g.GET(path, func(c *gin.Context) {
		c.JSON(http.StatusOK, h(c))
	})
}

// POST 空 body 按零值入参处理，交给业务层做必填校验
func POST[T any](e EZ, path string, h func(c *gin.Context, in T) resp.Envelope) {
	e.g.POST(path, func(c *gin.Context) {
		var in T
		if !bindJSON(c, &in) {
			return
		}
		c.JSON(http.StatusCreated, h(c, in))
	})
}

// GETID :id 路由，纯文本输出
func (e EZ) GETID(path string, h func(c *gin.Context, id int) string) {
	e.g.GET(path, func(c *gin.Context) {
		if id, ok := paramID(c); ok {
			c.String(http.StatusOK, h(c, id))
		}
	})
}

func (e EZ) DELETEID(path string, h func(c *gin.Context, id int) string) {
	e.g.DELETE(path, func(c *gin.Context) {
		if id, ok := paramID(c); ok {
			c.String(http.StatusOK, h(c, id))
		}
	})
}

func PATCHID[T any](e EZ, path string, h func(c *gin.Context, id int, in T) string) {
	e.g.PATCH(path, func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var in T
		if !bindJSON(c, &in) {
			return
		}
		c.String(http.StatusOK, h(c, id, in))
	})
}

func bindJSON(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, resp.Failure(resp.CodeBadRequest, err.Error()))
		return false
	}
	return true
}

func paramID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, resp.Failure(resp.CodeBadRequest, "Invalid id"))
		return 0, false
	}
	return id, true
}
