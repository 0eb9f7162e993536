// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/journal"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/lot"
	"stockledger/internal/domain/serial"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/pkg/logger"
)

// RouterConfig holds the wired services the API surfaces.
type RouterConfig struct {
	// Pool is the database connection (for health checks).
	Pool *postgres.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	Ledger  *ledger.Service
	Journal *journal.Service
	Lots    *lot.Service
	Serials *serial.Service
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
	}

	base := handlers.NewBaseHandler()
	inventoryHandler := handlers.NewInventoryHandler(base, cfg.Ledger, cfg.Journal)
	lotHandler := handlers.NewLotHandler(base, cfg.Lots)
	serialHandler := handlers.NewSerialHandler(base, cfg.Serials)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		inventory := api.Group("/inventory/:id")
		{
			inventory.GET("", inventoryHandler.Get)
			inventory.POST("/adjustments", inventoryHandler.Adjust)
			inventory.GET("/adjustments", inventoryHandler.History)

			inventory.GET("/lots", lotHandler.List)
			inventory.POST("/lots", lotHandler.Add)
			inventory.POST("/lots/consume", lotHandler.ConsumeFromPool)
			inventory.POST("/lots/reserve", lotHandler.ReserveFromPool)
			inventory.GET("/lots/allocation", lotHandler.Plan)

			inventory.GET("/serialized", serialHandler.List)
			inventory.GET("/serialized/available", serialHandler.FindAvailable)
		}

		lots := api.Group("/lots/:id")
		{
			lots.GET("", lotHandler.Get)
			lots.POST("/consume", lotHandler.Consume)
			lots.POST("/reserve", lotHandler.Reserve)
			lots.POST("/release", lotHandler.Release)
			lots.POST("/expire", lotHandler.Expire)
		}

		api.POST("/serialized", serialHandler.Receive)
		api.POST("/serialized/batch", serialHandler.ReceiveBatch)

		serialized := api.Group("/serialized/:id")
		{
			serialized.GET("", serialHandler.Get)
			serialized.POST("/reserve", serialHandler.Reserve)
			serialized.POST("/release", serialHandler.Release)
			serialized.POST("/ship", serialHandler.Ship)
			serialized.POST("/status", serialHandler.UpdateStatus)
		}
	}

	return router
}
