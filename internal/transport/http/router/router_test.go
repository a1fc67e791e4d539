package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"nextgen-training/internal/core/auth"
	mdw "nextgen-training/internal/transport/http/middleware"
)

type pingModule struct {
	name  string
	prio  int
	order *[]string
}

func (m pingModule) Priority() int { return m.prio }

func (m pingModule) MountAPI(api *gin.RouterGroup) {
	*m.order = append(*m.order, m.name)
	api.GET("/"+m.name, func(c *gin.Context) { c.String(http.StatusOK, m.name) })
}

type adminOnly struct{}

func (adminOnly) MountAdmin(g *gin.RouterGroup) {
	g.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, "%v", c.MustGet(mdw.KeyUserID)) })
}

func get(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewAPIEngine(t *testing.T) {
	var order []string
	reg := prometheus.NewRegistry()
	mods := NewModules(
		pingModule{name: "b", prio: 20, order: &order},
		pingModule{name: "a", prio: 10, order: &order},
		adminOnly{},
	)
	r := NewAPIEngine(zap.NewNop(), Options{
		Mode:     gin.TestMode,
		Metrics:  mdw.NewMetrics(reg, "t"),
		Gatherer: reg,
	}, mods)

	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, http.StatusOK, get(r, "/health", "").Code)
	assert.Equal(t, "a", get(r, "/api/v1/a", "").Body.String())
	assert.NotEmpty(t, get(r, "/api/v1/a", "").Header().Get(mdw.KeyRequestID))

	// admin 模块不挂在 api 引擎上
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/whoami", "").Code)

	w := get(r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "t_http_requests_total")
}

func TestNewAPIEngine_NoGatherer(t *testing.T) {
	r := NewAPIEngine(zap.NewNop(), Options{Mode: gin.TestMode}, NewModules())
	assert.Equal(t, http.StatusNotFound, get(r, "/metrics", "").Code)
}

func TestNewAdminEngine(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "test", TTL: time.Hour}
	r := NewAdminEngine(zap.NewNop(), Options{Mode: gin.TestMode, Gatherer: prometheus.NewRegistry()}, j, NewModules(adminOnly{}))

	assert.Equal(t, http.StatusOK, get(r, "/health", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/metrics", "").Code)

	w := get(r, "/admin/v1/whoami", "")
	assert.Contains(t, w.Body.String(), `"code":401`)

	userTok, _ := j.Issue(auth.Payload{UserID: 1, Role: "user"})
	assert.Contains(t, get(r, "/admin/v1/whoami", userTok).Body.String(), `"code":403`)

	adminTok, _ := j.Issue(auth.Payload{UserID: 5, Role: "admin"})
	assert.Equal(t, "5", get(r, "/admin/v1/whoami", adminTok).Body.String())
}
