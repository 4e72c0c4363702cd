package router

import (
	"github.com/gin-gonic/gin"

	"github.com/niouspark-cmd/student-hub-sub000/internal/config"
	"github.com/niouspark-cmd/student-hub-sub000/internal/http/handlers"
	"github.com/niouspark-cmd/student-hub-sub000/internal/http/middleware"
	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
	missionHandler *handlers.MissionHandler,
	walletHandler *handlers.WalletHandler,
	adminHandler *handlers.AdminHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Payment gateway callback. Authenticated by the shared gateway secret,
	// not a user token; rate limited against replay storms.
	paymentGroup := api.Group("/payments")
	paymentGroup.Use(middleware.GatewayKeyMiddleware(cfg.GatewaySecret))
	paymentGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		paymentGroup.POST("/confirm", paymentHandler.Confirm)
	}

	// Runner mission feed socket authenticates via query token.
	api.GET("/ws/missions", wsHandler.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		orders := protected.Group("/orders")
		{
			orders.POST("", middleware.RequireRoles(models.RoleStudent), orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.GET("/:orderId", orderHandler.Get)
			orders.GET("/:orderId/escrow", orderHandler.GetEscrow)
			orders.POST("/:orderId/cancel", orderHandler.Cancel)
			orders.POST("/:orderId/prepare", middleware.RequireRoles(models.RoleVendor), orderHandler.AdvancePrep)
			orders.POST("/:orderId/ready", middleware.RequireRoles(models.RoleVendor), orderHandler.MarkReady)
		}

		protected.POST("/verify", middleware.RequireRoles(models.RoleVendor, models.RoleRunner), orderHandler.VerifyCode)

		missions := protected.Group("/missions")
		missions.Use(middleware.RequireRoles(models.RoleRunner))
		{
			missions.GET("", missionHandler.List)
			missions.POST("/:missionId/accept",
				middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod),
				missionHandler.Accept)
			missions.GET("/presence", missionHandler.GetPresence)
			missions.PUT("/presence", missionHandler.SetPresence)
		}

		wallet := protected.Group("/wallet")
		wallet.Use(middleware.RequireRoles(models.RoleVendor, models.RoleRunner))
		{
			wallet.GET("", walletHandler.GetBalance)
			wallet.POST("/withdrawals", walletHandler.Withdraw)
			wallet.GET("/withdrawals", walletHandler.ListWithdrawals)
			wallet.GET("/transactions", walletHandler.ListTransactions)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.Use(middleware.OperatorKeyMiddleware(cfg.AdminKeyHash))
		{
			admin.POST("/escrow/:orderId/action", adminHandler.EscrowAction)
			admin.POST("/wallets/:userId/freeze", adminHandler.WalletFreeze)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.GET("/audit", adminHandler.ListAudit)
		}
	}

	return r
}
