package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/campus-resource-tracker/internal/interface/http"
	"github.com/oksasatya/campus-resource-tracker/internal/interface/middleware"
	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
)

// AuthModule mounts registration, login and the current-user endpoint.
// Public: POST /auth/register, POST /auth/login
// Protected: GET /auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.GET("/auth/me", middleware.Auth(m.JWT), m.Handler.Me)
}
