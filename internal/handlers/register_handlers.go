package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/questforge/treasury/internal/core/ports/services"
	"github.com/questforge/treasury/internal/core/services"
	"github.com/questforge/treasury/internal/middleware"
	"github.com/questforge/treasury/internal/platform/config"
	"github.com/questforge/treasury/pkg/registry"
)

// EconomyResolver returns the economy provider to serve a request with.
type EconomyResolver func() portssvc.EconomySvcFacade

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces. The economy provider is resolved through the service
// table on every request, so a higher-priority registration takes over
// without a restart.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	container *portssvc.ServiceContainer,
	table *registry.Registry,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	economy := func() portssvc.EconomySvcFacade {
		if provider, ok := registry.ActiveAs[portssvc.EconomySvcFacade](table, services.EconomyServiceCategory); ok {
			return provider
		}
		return container.Economy
	}

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerCurrencyRoutes(v1, container.Currency, container.Store)
	registerAccountRoutes(v1, container.Store, economy)
	registerTransferRoutes(v1, economy)
	registerDiagnosticsRoutes(v1, container.Diagnostics)
}
