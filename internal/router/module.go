package router

import "github.com/gin-gonic/gin"

// Module mounts one feature's routes. Modules receive their dependencies
// through their constructors and never reach for globals.
type Module interface {
	Register(rg *gin.RouterGroup)
}
