package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/internal/application"
	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

type AuthHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(users *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Logger: logger}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	u, err := h.Users.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Logger.WithFields(logrus.Fields{"user_id": u.ID, "ip": clientIP(c)}).Info("user registered")
	response.Success(c, http.StatusCreated, toUserDTO(u), "registered", nil)
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserDTO   `json:"user"`
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Users.Login(c.Request.Context(), req.identifier(), req.Password)
	if err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			h.Logger.WithField("ip", clientIP(c)).Info("login failed")
		}
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserDTO(res.User),
	}, "logged in", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Users.Me(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserDTO(u), "ok", nil)
}
