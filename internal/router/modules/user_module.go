package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/campus-resource-tracker/internal/interface/http"
	"github.com/oksasatya/campus-resource-tracker/internal/interface/middleware"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users")
	auth.Use(
		middleware.Auth(m.JWT),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	auth.GET("/search", m.Handler.Search)
}
