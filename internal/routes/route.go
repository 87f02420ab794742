package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/eventmap/internal/container"
	"github.com/joshua-takyi/eventmap/internal/handlers"
	"github.com/joshua-takyi/eventmap/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	if container.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(container.Metrics.Handler()))

	mapAssets := r.Group("/assets/map")
	{
		mapAssets.GET("/map.js", handlers.MapScript(container.AssetLoader))
		mapAssets.GET("/map.css", handlers.MapStyle(container.AssetLoader))
	}

	sessions := container.SessionService
	upgrader := handlers.NewUpgrader(container.Config.CORSOrigins)

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", handlers.Health("eventmap-api", sessions))

		search := handlers.SearchEvents(container.SearchService, sessions)
		v1.GET("/events/search", search)
		v1.POST("/events/search", search)
	}

	sessionRoutes := v1.Group("/sessions")
	{
		sessionRoutes.POST("", handlers.CreateSession(sessions, container.Config.IsProduction()))
		sessionRoutes.GET("/:id", handlers.GetSession(sessions))
		sessionRoutes.DELETE("/:id", handlers.DeleteSession(sessions))
		sessionRoutes.GET("/:id/ws", handlers.SessionSocket(sessions, upgrader, container.Logger))
		sessionRoutes.POST("/:id/selection", handlers.PublishSelection(sessions))
	}

	return r
}
