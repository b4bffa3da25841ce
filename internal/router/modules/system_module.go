package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/campus-resource-tracker/internal/interface/http"
	"github.com/oksasatya/campus-resource-tracker/internal/interface/middleware"
)

// SystemModule serves health and, when enabled, the expvar counters.
type SystemModule struct {
	Health       *handlers.HealthHandler
	Redis        *redis.Client
	DebugEnabled bool
}

func NewSystemModule(h *handlers.HealthHandler, rdb *redis.Client, debugEnabled bool) *SystemModule {
	return &SystemModule{Health: h, Redis: rdb, DebugEnabled: debugEnabled}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Health)
	if m.DebugEnabled {
		rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
