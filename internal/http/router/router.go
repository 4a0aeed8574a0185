package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/civic-reports-backend/internal/config"
	"github.com/ignatzorin/civic-reports-backend/internal/http/handlers"
	"github.com/ignatzorin/civic-reports-backend/internal/http/middleware"
	"github.com/ignatzorin/civic-reports-backend/internal/service"
)

// SetupRouter собирает все маршруты сервиса.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	reportHandler *handlers.ReportHandler,
	statsHandler *handlers.StatsHandler,
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
	r.StaticFS("/uploads", http.Dir(cfg.UploadsPath))

	api := r.Group("/api")

	// Маршруты аутентификации ограничены жёстче остальных: пять попыток
	// за период против перебора паролей.
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	{
		api.POST("/register", authRateLimit, authHandler.Register)
		api.POST("/login", authRateLimit, authHandler.Login)
		api.POST("/register-authority", authRateLimit, authHandler.RegisterAuthority)
		api.POST("/login-authority", authRateLimit, authHandler.LoginAuthority)
	}

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/reports", reportHandler.ListAll)
		protected.POST("/reports",
			middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod),
			reportHandler.Create)
		protected.GET("/user/reports", reportHandler.ListOwn)
		protected.GET("/stats", statsHandler.Get)

		// Смена статуса и фото-подтверждение доступны только ведомствам.
		authority := protected.Group("/")
		authority.Use(middleware.RequireAuthority())
		{
			authority.PATCH("/reports/:id/status", reportHandler.SetStatus)
			authority.PATCH("/reports/:id/image", reportHandler.AttachImage)
		}
	}

	return r
}
