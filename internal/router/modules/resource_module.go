package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/campus-resource-tracker/internal/interface/http"
	"github.com/oksasatya/campus-resource-tracker/internal/interface/middleware"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

// ResourceModule mounts the resource catalogue. Reads are public; writes
// require a bearer token and share a per-user budget.
type ResourceModule struct {
	Handler *handlers.ResourceHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewResourceModule(h *handlers.ResourceHandler, jwt *helpers.JWTManager, rdb *redis.Client) *ResourceModule {
	return &ResourceModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *ResourceModule) Register(rg *gin.RouterGroup) {
	rg.GET("/resources", m.Handler.List)
	// registered before /:id so "search" is never taken for an id
	rg.GET("/resources/search", m.Handler.Find)
	rg.GET("/resources/:id", m.Handler.Get)

	auth := rg.Group("/resources")
	auth.Use(
		middleware.Auth(m.JWT),
		middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
		auth.POST("/:id/rate", m.Handler.Rate)
		auth.POST("/:id/photo", m.Handler.UploadPhoto)
	}
}
