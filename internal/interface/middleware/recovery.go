package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

// Recovery turns a panic into the opaque 500 envelope and logs the stack.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"request_id": c.GetString("request_id"),
						"path":       c.Request.URL.Path,
						"panic":      rec,
						"stack":      string(debug.Stack()),
					}).Error("panic recovered")
				}
				response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		c.Next()
	}
}
