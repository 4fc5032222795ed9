// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stocktake/internal/domain/auth"
	"stocktake/internal/domain/counting"
	"stocktake/internal/infrastructure/http/v1/handlers"
	"stocktake/internal/infrastructure/http/v1/middleware"
	"stocktake/internal/infrastructure/storage/postgres"
	"stocktake/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool            *postgres.Pool
	Logger          *logger.Logger
	JWTValidator    middleware.JWTValidator
	AuthService     *auth.Service
	CountingService *counting.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
	itemHandler := handlers.NewItemHandler(baseHandler, cfg.CountingService)
	sessionHandler := handlers.NewSessionHandler(baseHandler, cfg.CountingService)
	inventoryHandler := handlers.NewInventoryHandler(baseHandler, cfg.CountingService, cfg.AuthService)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		items := protected.Group("/items")
		{
			items.GET("", itemHandler.List)
			items.POST("/import", itemHandler.Import)
			items.POST("/reconcile", itemHandler.Reconcile)
			items.GET("/export", itemHandler.Export)
			items.POST("/:id/count", itemHandler.RecordCount)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("", sessionHandler.Overview)
			sessions.GET("/current", sessionHandler.Current)
			sessions.PUT("/current", sessionHandler.Switch)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.GET("/script", inventoryHandler.Script)
			inventory.POST("/reset", middleware.RequireAdmin(), inventoryHandler.Reset)
		}
	}

	return router
}
