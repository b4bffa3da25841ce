package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/internal/application"
	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

type UserHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Logger: logger}
}

// Search GET /api/users/search?q=...&size=...
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	refs, err := h.Users.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, toUserRefDTOs(refs), "ok")
}
