package app

import (
	"context"
	"log"

	"taskpad/backend/internal/cache"
	"taskpad/backend/internal/config"
	"taskpad/backend/internal/database"
	"taskpad/backend/internal/middleware"
	"taskpad/backend/internal/monitoring"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App owns the process-wide resources: the database handle, the optional
// Redis cache, and the assembled router. Everything is constructed here
// and injected downward; nothing holds a global connection.
type App struct {
	cfg       *config.Config
	db        *gorm.DB
	taskCache *cache.TaskCache
	limiter   *middleware.RateLimiter
	router    *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	a.db = db

	if cfg.Redis.Enabled {
		taskCache := cache.NewTaskCache(&cache.Config{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			TTL:          cfg.Redis.CacheTTL,
		})
		if err := taskCache.Health(context.Background()); err != nil {
			log.Printf("redis unavailable, running without task cache: %v", err)
			taskCache.Close()
		} else {
			a.taskCache = taskCache
		}
	}

	if cfg.RateLimit.Enabled {
		a.limiter = middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		)
	}

	a.router = NewRouter(cfg, a.db, a.taskCache, a.limiter)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.taskCache != nil {
		if err := a.taskCache.Close(); err != nil {
			log.Printf("closing task cache: %v", err)
		}
	}
	return database.Close(a.db)
}

func healthChecks(db *gorm.DB, taskCache *cache.TaskCache) map[string]monitoring.HealthCheckFunc {
	checks := map[string]monitoring.HealthCheckFunc{
		"database": func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	}
	if taskCache != nil {
		checks["redis"] = func() error {
			return taskCache.Health(context.Background())
		}
	}
	return checks
}
