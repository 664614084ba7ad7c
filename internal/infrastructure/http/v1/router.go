// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"invoicing/internal/domain/invoice"
	"invoicing/internal/infrastructure/http/v1/handlers"
	"invoicing/internal/infrastructure/http/v1/middleware"
	"invoicing/internal/infrastructure/storage/postgres"
	"invoicing/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// InvoiceService provides invoice business operations
	InvoiceService *invoice.Service

	// Audit reads the invoice mutation journal; may be nil
	Audit *postgres.AuditService
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

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// Invoice endpoints
	baseHandler := handlers.NewBaseHandler()
	invoiceHandler := handlers.NewInvoiceHandler(baseHandler, cfg.InvoiceService, cfg.Audit)
	invoiceHandler.RegisterRoutes(router.Group("/invoices"))

	return router
}
