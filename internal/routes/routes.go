package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paylink_backend/internal/handlers"
)

// RegisterRoutes registers all HTTP routes.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.PaymentRequestHandler.RegisterRoutes(api)
		appHandlers.OutgoingPaymentHandler.RegisterRoutes(api)
		appHandlers.WalletHandler.RegisterRoutes(api)
	}

	// Public payment link, outside the versioned API.
	appHandlers.PayHandler.RegisterRoutes(ginRouter)

	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ginRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
