package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/priceview/backend/config"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg *config.Config, handler *Handler, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handler.HealthCheck)

		handler.registerCatalogRoutes(v1.Group("/products"), handler.retail)
		handler.registerCatalogRoutes(v1.Group("/para"), handler.para)

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/prices", handler.ShopPrices)
			analytics.GET("/merge-stats", handler.MergeStatsOverview)
			analytics.GET("/shop-details", handler.ShopDetails)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", handler.SignUp)
			auth.POST("/signin", handler.SignIn)
			auth.POST("/verify-email", handler.VerifyEmail)
			auth.POST("/forgot-password", handler.ForgotPassword)
			auth.POST("/reset-password", handler.ResetPassword)
			auth.POST("/google", handler.GoogleLogin)

			protected := auth.Group("", AuthRequired(handler.auth))
			{
				protected.GET("/me", handler.Me)
				protected.PUT("/profile", handler.UpdateProfile)
				protected.PUT("/change-password", handler.ChangePassword)
			}
		}
	}

	return router
}
