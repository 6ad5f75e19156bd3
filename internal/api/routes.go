package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"updigital/internal/api/controllers"
	"updigital/internal/api/middleware"
	"updigital/internal/handlers"
	"updigital/internal/models"
	"updigital/internal/services"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, World!")
	})
	s.echo.GET("/health", s.healthCheck)

	// Session resolution is scoped to /api; the health check answers
	// with its own diagnostics even when the session store is down.
	session := middleware.NewSessionMiddleware(s.deps.Sessions, s.config.Session.CookieName)
	api := s.echo.Group("/api", session.Middleware())

	// Auth
	authHandler := handlers.NewAuthHandler(s.deps.Workflow, s.deps.Sessions, s.deps.DB, s.deps.Tasks, s.config.Session)
	authGroup := api.Group("/auth")
	if s.deps.Redis != nil {
		authGroup.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RedisClient: s.deps.Redis,
			Limit:       rate.Limit(1),
			Burst:       10,
			Window:      time.Minute,
		}))
	}
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/verify/:code", authHandler.VerifyEmail)
	authGroup.GET("/me", authHandler.GetMe, middleware.RequireUser())
	authGroup.POST("/password-reset", authHandler.RequestPasswordReset)
	authGroup.POST("/password-reset/verify", authHandler.VerifyResetCode)

	// Clients (owner-scoped, session required)
	clientService := services.NewBaseService(s.deps.DB, models.Client{})
	clientController := controllers.NewBaseController(clientService, "user_id")
	clientGroup := api.Group("/clients", middleware.RequireUser())
	clientGroup.GET("", clientController.List)
	clientGroup.GET("/export", handlers.NewExportHandler(s.deps.DB).ExportClients)
	clientGroup.GET("/:id", clientController.Get)
	clientGroup.POST("", clientController.Create)
	clientGroup.PATCH("/:id", clientController.Update)
	clientGroup.PUT("/:id", clientController.Replace)
	clientGroup.DELETE("/:id", clientController.Delete)

	// Campaigns
	campaignService := services.NewBaseService(s.deps.DB, models.Campaign{})
	campaignController := controllers.NewBaseController(campaignService, "client_id", "status")
	campaignGroup := api.Group("/campaigns")
	campaignGroup.GET("", campaignController.List)
	campaignGroup.GET("/:id", campaignController.Get)
	campaignGroup.POST("", campaignController.Create)
	campaignGroup.PATCH("/:id", campaignController.Update)
	campaignGroup.PUT("/:id", campaignController.Replace)
	campaignGroup.DELETE("/:id", campaignController.Delete)

	// Users (session required)
	userHandler := handlers.NewUserHandler(s.deps.DB)
	userGroup := api.Group("/users", middleware.RequireUser())
	userGroup.GET("", userHandler.ListUsers)
	userGroup.GET("/:id", userHandler.GetUser)
	userGroup.PATCH("/:id", userHandler.UpdateUser)
	userGroup.PUT("/:id", userHandler.UpdateUser)
	userGroup.DELETE("/:id", userHandler.DeleteUser)

	// Uploads (session required)
	uploadHandler := handlers.NewUploadHandler(s.deps.DB, s.deps.Storage)
	api.POST("/uploads/avatar", uploadHandler.UploadAvatar, middleware.RequireUser())
}
