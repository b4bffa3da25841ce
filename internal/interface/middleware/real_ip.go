package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client address under "real_ip" for rate-limit keys and
// logs. Proxy headers are checked in order: CF-Connecting-IP, X-Real-IP, then
// the left-most X-Forwarded-For entry; otherwise Gin's ClientIP.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", resolveIP(c))
		c.Next()
	}
}

func resolveIP(c *gin.Context) string {
	candidates := []string{
		c.GetHeader("CF-Connecting-IP"),
		c.GetHeader("X-Real-IP"),
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		candidates = append(candidates, first)
	}
	for _, v := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
