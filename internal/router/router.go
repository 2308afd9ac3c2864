package router

import (
	"github.com/gin-gonic/gin"

	"sellerhub/internal/controller"
	"sellerhub/internal/middleware"
)

// InitRoutes registers all routes. OAuth callbacks are the only public
// surface besides the health check; everything under /api requires a JWT.
func InitRoutes(r *gin.Engine,
	authCtl *controller.AuthController,
	userCtl *controller.UserController,
	productCtl *controller.ProductController,
	syncCtl *controller.SyncController,
	automationCtl *controller.AutomationController,
	aiCtl *controller.AIController,
	notificationCtl *controller.NotificationController) {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Browser-facing OAuth callbacks; no JWT, state carries the user.
	r.GET("/auth/:platform/callback", authCtl.Callback)

	api := r.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		api.GET("/me", userCtl.Me)

		auth := api.Group("/auth")
		{
			auth.GET("/:platform/login", authCtl.Login)
			auth.POST("/:platform/exchange", authCtl.Exchange)
		}

		integrations := api.Group("/integrations")
		{
			integrations.GET("", authCtl.ListIntegrations)
			integrations.DELETE("/:id", authCtl.Disconnect)
		}

		products := api.Group("/products")
		{
			products.GET("", productCtl.List)
			products.GET("/:id", productCtl.Get)
			products.POST("", productCtl.Create)
			products.POST("/:id/stock", productCtl.AdjustStock)
		}

		sync := api.Group("/sync")
		{
			sync.PUT("/products/:id", syncCtl.Update)
			sync.POST("/products/:id/resync", syncCtl.Resync)
			sync.POST("/products/:id/publish", syncCtl.Publish)
		}

		automation := api.Group("/automation")
		{
			automation.POST("/rules", automationCtl.CreateRule)
			automation.GET("/rules", automationCtl.ListRules)
			automation.PUT("/rules/:id/active", automationCtl.SetRuleActive)
			automation.DELETE("/rules/:id", automationCtl.DeleteRule)
			automation.GET("/rules/:id/history", automationCtl.RuleHistory)
			automation.POST("/run", automationCtl.Run)
		}

		ai := api.Group("/ai")
		{
			ai.POST("/chat", aiCtl.Chat)
			ai.POST("/actions/execute", aiCtl.ExecuteAction)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationCtl.List)
			notifications.PUT("/:id/read", notificationCtl.MarkRead)
		}
	}
}
