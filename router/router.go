// Package router wires the HTTP endpoints of the traffic backend.
package router

import (
	"time"

	"github.com/NaviFeed/navifeed-backend/config"
	"github.com/NaviFeed/navifeed-backend/handlers"
	"github.com/NaviFeed/navifeed-backend/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies carries the handlers the router needs.
type Dependencies struct {
	Traffic *handlers.TrafficHandler
	Health  *handlers.HealthHandler
}

// Setup builds the gin engine with all routes and middleware.
func Setup(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware(cfg))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	// Health probes
	r.GET("/health/liveness", deps.Health.LivenessCheck)
	r.GET("/health/readiness", deps.Health.ReadinessCheck)

	// Versioned routes
	v1 := r.Group("/v1")
	traffic := v1.Group("/traffic")
	{
		traffic.GET("/messages", deps.Traffic.ListMessagesHandler)
		traffic.GET("/messages/:id", deps.Traffic.GetMessageHandler)
		traffic.GET("/providers", deps.Traffic.ListProvidersHandler)
	}

	return r
}
