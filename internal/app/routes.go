package app

import (
	"time"

	"taskpad/backend/internal/cache"
	"taskpad/backend/internal/config"
	"taskpad/backend/internal/handlers"
	"taskpad/backend/internal/middleware"
	"taskpad/backend/internal/monitoring"
	"taskpad/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter assembles middleware, services, and routes. Tests call it
// directly with an in-memory database and no cache or limiter.
func NewRouter(cfg *config.Config, db *gorm.DB, taskCache *cache.TaskCache, limiter *middleware.RateLimiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	metrics := monitoring.NewMetrics()
	r.Use(metrics.Middleware())

	if limiter != nil {
		r.Use(limiter.Middleware())
	}

	r.Use(middleware.SessionMiddleware(cfg.Auth.JWTSecret))

	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.BCryptCost)

	var taskService services.TaskService = services.NewTaskService()
	if taskCache != nil {
		taskService = services.NewCachedTaskService(taskService, taskCache)
	}

	authHandler := handlers.NewAuthHandler(db, authService, cfg.Auth.SessionTTL)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/session", authHandler.Session)
	}

	tasks := r.Group("/tasks", middleware.RequireSession())
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	r.GET("/health", monitoring.HealthHandler(healthChecks(db, taskCache)))
	r.GET("/metrics", metrics.Handler())

	return r
}
