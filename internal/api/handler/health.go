package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles the liveness endpoint.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Health reports liveness. No upstream checks: the pipeline degrades per
// component, so model or face-service outages do not make this instance
// unhealthy.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "memorybook",
	})
}
