package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turnex-app/turnex/internal/interfaces/http/handlers"
	"github.com/turnex-app/turnex/internal/interfaces/http/middleware"
	sharedConfig "github.com/turnex-app/turnex/internal/shared/config"
	"github.com/turnex-app/turnex/internal/shared/logger"
)

// Setup builds the HTTP router. The webhook route stays outside the
// tenant-scoped group because the gateway addresses it by query parameter.
func Setup(
	serverCfg *sharedConfig.ServerConfig,
	subscriptionHandler *handlers.SubscriptionHandler,
	billingHandler *handlers.BillingHandler,
	gatewayHandler *handlers.GatewayHandler,
	log logger.Interface,
) *gin.Engine {
	gin.SetMode(ginMode(serverCfg.Mode))

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(serverCfg.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/plans", subscriptionHandler.ListPlans)

		v1.POST("/webhooks/mercadopago", billingHandler.Webhook)
		v1.GET("/gateway/callback", gatewayHandler.Callback)

		tenant := v1.Group("/tenants/:tenant_id")
		{
			tenant.POST("/subscription", subscriptionHandler.CreateSubscription)
			tenant.POST("/subscription/trial", subscriptionHandler.CreateTrial)
			tenant.GET("/subscription", subscriptionHandler.GetSubscription)
			tenant.POST("/subscription/cancel", subscriptionHandler.CancelSubscription)
			tenant.POST("/subscription/plan", subscriptionHandler.ChangePlan)
			tenant.GET("/limits/:resource", subscriptionHandler.CheckLimit)

			tenant.POST("/payments", billingHandler.CreatePaymentIntent)

			tenant.POST("/gateway/connect", gatewayHandler.Connect)
			tenant.GET("/gateway/status", gatewayHandler.Status)
			tenant.DELETE("/gateway", gatewayHandler.Disconnect)
		}
	}

	return router
}

func ginMode(mode string) string {
	switch mode {
	case "release", "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
