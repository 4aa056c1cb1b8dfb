package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRegistrar struct {
	registered bool
}

func (p *pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	p.registered = true
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestRouter(t *testing.T) {
	t.Run("exposes health endpoint", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Setup()

		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ok")
	})

	t.Run("mounts registrars under the default version", func(t *testing.T) {
		engine := gin.New()
		registrar := &pingRegistrar{}
		NewRouter(engine).Register(registrar).Setup()

		req := httptest.NewRequest("GET", "/api/v1/ping", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.True(t, registrar.registered)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("honours a custom api version", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine, WithAPIVersion("v2")).Register(&pingRegistrar{}).Setup()

		req := httptest.NewRequest("GET", "/api/v2/ping", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		req = httptest.NewRequest("GET", "/api/v1/ping", nil)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
