package routes

import (
	"os"

	"github.com/abenezer-t/CampusEats/controllers"
	"github.com/abenezer-t/CampusEats/middleware"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	sessionKey := os.Getenv("SESSION_SECRET")
	if sessionKey == "" {
		sessionKey = "campuseats-dev-session-key"
	}
	store := cookie.NewStore([]byte(sessionKey))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("campuseats", store))

	// OAuth routes outside the versioned API
	auth := router.Group("/auth")
	{
		auth.GET("/google/login", controllers.GoogleLogin)
		auth.GET("/google/callback", controllers.GoogleCallback)
	}

	api := router.Group("/v1")
	{
		initAuthRoutes(api)
		initCatalogRoutes(api)
		initOrderRoutes(api)
		initContractRoutes(api)
		initPaymentRoutes(api)
		initUserRoutes(api)
	}

	return router
}

func initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/verify-otp", controllers.VerifyOTP)
		auth.POST("/resend-otp", controllers.ResendOTP)
		auth.POST("/login", controllers.Login)
	}
}

func initCatalogRoutes(api *gin.RouterGroup) {
	lounges := api.Group("/lounges")
	{
		lounges.GET("", controllers.ListLounges)
		lounges.GET("/:id", controllers.GetLounge)
		lounges.GET("/:id/foods", controllers.ListFoods)

		protected := lounges.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("", middleware.AdminMiddleware(), controllers.CreateLounge)
			protected.PUT("/:id", controllers.UpdateLounge)
			protected.POST("/:id/foods", controllers.CreateFood)
			protected.GET("/:id/report", controllers.DownloadLoungeReportExcel)
		}
	}

	foods := api.Group("/foods")
	foods.Use(middleware.AuthMiddleware())
	{
		foods.PUT("/:foodId", controllers.UpdateFood)
		foods.DELETE("/:foodId", controllers.DeleteFood)
	}
}

func initOrderRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", controllers.CreateOrder)
		orders.GET("", controllers.ListOrders)
		orders.GET("/:id", controllers.GetOrder)
		orders.PATCH("/:id/status", middleware.RequireRole(models.RoleLounge, models.RoleAdmin), controllers.UpdateOrderStatus)
		orders.POST("/verify-qr", middleware.RequireRole(models.RoleLounge, models.RoleAdmin), controllers.VerifyPickupQR)
		orders.GET("/:id/receipt", controllers.DownloadReceipt)
	}
}

func initContractRoutes(api *gin.RouterGroup) {
	contracts := api.Group("/contracts")
	contracts.Use(middleware.AuthMiddleware())
	{
		contracts.POST("", controllers.CreateContract)
		contracts.GET("", controllers.ListContracts)
		contracts.GET("/:id", controllers.GetContract)
		contracts.POST("/:id/renew", controllers.RenewContract)
		contracts.GET("/lounge/:loungeId", controllers.GetLoungeContract)
	}
}

func initPaymentRoutes(api *gin.RouterGroup) {
	payments := api.Group("/payments")
	{
		// Webhook is authenticated by reference lookup, not by JWT
		payments.POST("/webhook", controllers.ChapaWebhook)

		protected := payments.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/initialize", controllers.InitializePayment)
			protected.GET("/:id/verify", controllers.VerifyPaymentStatus)
			protected.GET("", controllers.ListPayments)
		}
	}
}

func initUserRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", controllers.GetProfile)
		users.PUT("/me", controllers.UpdateProfile)
		users.PUT("/me/fcm-token", controllers.UpdateFCMToken)
	}
}
