package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

const keyPrefix = "crt:rl:"

// ipFromCtx prefers the address resolved by RealIP.
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds the counter key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client address across all routes sharing the limiter.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return keyPrefix + "ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath gives each route its own budget per client address.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return keyPrefix + "path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits authenticated callers by user, anonymous ones by address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return keyPrefix + "user:anon:ip:" + ipFromCtx(c)
		}
		return keyPrefix + "user:" + uid
	}
}

// INCR and set the window on the first hit, atomically.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// AllowFunc returns true to let a request bypass the limiter.
type AllowFunc func(*gin.Context) bool

// RateLimit is a fixed-window limiter backed by Redis. It is a no-op without
// a client and fails open when Redis errors.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFn(c)

		count, err := incrExpireScript.Run(ctx, rdb, []string{key}, window.Milliseconds()).Int()
		if err != nil {
			c.Next()
			return
		}

		resetSec := 0
		if ttl, err := rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
			resetSec = int((ttl + time.Second - 1) / time.Second)
		}
		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		c.Next()
	}
}
