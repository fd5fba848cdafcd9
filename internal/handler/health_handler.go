package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether session storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store   Pinger
	ruleSet string
}

// NewHealthHandler creates a new HealthHandler instance. store may be nil.
func NewHealthHandler(store Pinger, ruleSet string) *HealthHandler {
	return &HealthHandler{
		store:   store,
		ruleSet: ruleSet,
	}
}

// LivenessProbe checks if the application is running.
func (h *HealthHandler) LivenessProbe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"time":   time.Now(),
	})
}

// ReadinessProbe checks if session storage can be reached.
func (h *HealthHandler) ReadinessProbe(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "DOWN",
				"storage": "unhealthy",
				"error":   err.Error(),
				"time":    time.Now(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "UP",
		"storage":  "healthy",
		"rule_set": h.ruleSet,
		"time":     time.Now(),
	})
}
