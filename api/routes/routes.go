package routes

import (
	"net/http"

	"github.com/ArowuTest/tourbook-backend/internal/config"
	"github.com/ArowuTest/tourbook-backend/internal/handlers"
	"github.com/ArowuTest/tourbook-backend/internal/middleware"
	"github.com/ArowuTest/tourbook-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HandlerDependencies holds all handler dependencies
type HandlerDependencies struct {
	CampaignHandler       *handlers.CampaignHandler
	ReservationHandler    *handlers.ReservationHandler
	NotificationHandler   *handlers.NotificationHandler
	SystemSettingsHandler *handlers.SystemSettingsHandler
	UserHandler           *handlers.UserHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies, tokens *jwt.TokenService, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedHosts))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens, logger))
	{
		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetCampaigns)
			campaigns.POST("", deps.CampaignHandler.CreateCampaign)
			campaigns.GET("/:id", deps.CampaignHandler.GetCampaign)
			campaigns.PUT("/:id", deps.CampaignHandler.UpdateCampaign)
			campaigns.DELETE("/:id", deps.CampaignHandler.DeleteCampaign)
			campaigns.POST("/:id/schedule", deps.CampaignHandler.ScheduleCampaign)
			campaigns.POST("/:id/activate", deps.CampaignHandler.ActivateCampaign)
			campaigns.POST("/:id/cancel", deps.CampaignHandler.CancelCampaign)
			campaigns.GET("/:id/audience", deps.CampaignHandler.GetAudience)
			campaigns.GET("/:id/metrics", deps.CampaignHandler.GetMetrics)
			campaigns.GET("/:id/notifications", deps.CampaignHandler.GetNotifications)
			campaigns.POST("/:id/deliveries", deps.CampaignHandler.RecordDelivery)
			campaigns.POST("/:id/reads", deps.CampaignHandler.RecordRead)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.POST("/:id/refresh-status", deps.NotificationHandler.RefreshStatus)
		}

		reservations := protected.Group("/reservations")
		{
			reservations.GET("/:id", deps.ReservationHandler.GetReservation)
			reservations.POST("/:id/reprogramming/evaluate", deps.ReservationHandler.EvaluateReprogramming)
			reservations.POST("/:id/reprogram", deps.ReservationHandler.Reprogram)
		}

		users := protected.Group("/users")
		{
			users.GET("/count", deps.UserHandler.GetUserCount)
			users.GET("/:id", deps.UserHandler.GetUserByID)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("", deps.SystemSettingsHandler.GetSettings)

			admin := settings.Group("")
			admin.Use(middleware.RequireRole(jwt.RoleAdmin))
			admin.PUT("/reprogramming-rules", deps.SystemSettingsHandler.UpdateReprogrammingRules)
			admin.PUT("/push-gateway", deps.SystemSettingsHandler.UpdatePushGateway)
		}
	}

	return router
}
