package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/campus-resource-tracker/internal/container"
	handlers "github.com/oksasatya/campus-resource-tracker/internal/interface/http"
	"github.com/oksasatya/campus-resource-tracker/internal/interface/middleware"
	"github.com/oksasatya/campus-resource-tracker/internal/router/modules"
	"github.com/oksasatya/campus-resource-tracker/pkg/validation"
)

// InitModules builds the handlers from the container and registers their
// modules with the registry.
func InitModules(r *Registry, c *container.Container) {
	rdb := c.Infra.Redis

	authHandler := handlers.NewAuthHandler(c.UserService, c.Logger)
	userHandler := handlers.NewUserHandler(c.UserService, c.Logger)
	resourceHandler := handlers.NewResourceHandler(c.ResourceService, c.SearchService, c.RatingService, c.Logger)
	healthHandler := handlers.NewHealthHandler(c.Config.StoreDriver, c.Checks())

	r.Add(
		modules.NewSystemModule(healthHandler, rdb, c.Config.DebugMetricsEnabled),
		modules.NewAuthModule(authHandler, c.JWT, rdb),
		modules.NewResourceModule(resourceHandler, c.JWT, rdb),
		modules.NewUserModule(userHandler, c.JWT, rdb),
	)
}

// NewEngine returns a Gin engine with the global middleware and every module
// mounted under /api.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.Recovery(c.Logger))
	if origins := c.Config.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}
	if c.Config.HTTPLogEnabled || c.Config.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r, "/api")
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
