package handler

import (
	"site_blocker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the control API routes.
func NewRouter(sessions *SessionHandler, health *HealthHandler, apiKeys []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	router.GET("/health", health.LivenessProbe)
	router.GET("/health/ready", health.ReadinessProbe)

	api := router.Group("/api")
	api.Use(middleware.NewAPIKeyAuth(apiKeys).Handler())
	{
		api.POST("/message", sessions.HandleMessage)
		api.GET("/status", sessions.GetStatus)
		api.POST("/blocking", sessions.StartBlocking)
		api.POST("/temp-unblock", sessions.TempUnblock)
		api.POST("/resume", sessions.Resume)
	}

	return router
}
