package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/campus-resource-tracker/pkg/helpers"
	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

const CtxUserIDKey = "userID"

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth verifies the bearer token and sets userID in the Gin context.
// Verification is local; no store lookup happens here.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}
