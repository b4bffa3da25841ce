package router

import "github.com/gin-gonic/gin"

// Registry collects group-wide middleware and feature modules, then mounts
// them under one base path.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine, basePath string) *Registry {
	return &Registry{Engine: engine, API: engine.Group(basePath)}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll applies the middleware first so every module route sees it.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
