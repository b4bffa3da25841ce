package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

type HealthHandler struct {
	Driver string
	Checks map[string]func(context.Context) error
}

func NewHealthHandler(driver string, checks map[string]func(context.Context) error) *HealthHandler {
	return &HealthHandler{Driver: driver, Checks: checks}
}

type healthReport struct {
	Status     string            `json:"status"`
	Driver     string            `json:"driver"`
	Components map[string]string `json:"components,omitempty"`
}

// Health GET /api/health
// Always answers 200; a failing dependency marks the report degraded.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{Status: "ok", Driver: h.Driver}
	if len(h.Checks) > 0 {
		report.Components = make(map[string]string, len(h.Checks))
	}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			report.Components[name] = err.Error()
			report.Status = "degraded"
			continue
		}
		report.Components[name] = "ok"
	}
	response.Success(c, http.StatusOK, report, report.Status, nil)
}
