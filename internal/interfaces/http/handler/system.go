package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves liveness checks
type SystemHandler struct {
	BaseHandler
	upstream string
	started  time.Time
}

// NewSystemHandler creates a new SystemHandler. upstream is the API base
// URL reported by /healthz.
func NewSystemHandler(upstream string) *SystemHandler {
	return &SystemHandler{upstream: upstream, started: time.Now()}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/healthz", h.Health)
}

// Health reports the gateway as alive. It does not contact the API.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"upstream": h.upstream,
	})
}
