package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses limits for loopback and RFC 1918 callers, e.g. a
// scraper inside the cluster polling /api/debug/vars.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(ipFromCtx(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}
