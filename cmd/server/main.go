package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scorecard/api/internal/cache"
	"github.com/scorecard/api/internal/config"
	"github.com/scorecard/api/internal/database"
	"github.com/scorecard/api/internal/handler"
	"github.com/scorecard/api/internal/ingest"
	"github.com/scorecard/api/internal/middleware"
	"github.com/scorecard/api/internal/repository"
	"github.com/scorecard/api/internal/scheduler"
)

func main() {
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis report cache
	var reportCache *cache.RedisCache
	reportCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without the report cache (fail-open)
		reportCache = nil
	}

	// Initialize the ingestion pipeline
	ingestService := ingest.NewService(repository.NewRegistry(db))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, cfg.JWTSecret)
	projectHandler := handler.NewProjectHandler(db, ingestService, reportCache)
	segmentHandler := handler.NewSegmentHandler(db, reportCache)
	typologyHandler := handler.NewTypologyHandler(db)

	// Start background refresh-token purge if enabled
	if cfg.TokenPurgeEnabled {
		purgeScheduler := scheduler.NewTokenPurgeScheduler(db, cfg.TokenPurgeInterval)
		go purgeScheduler.Start(context.Background())
	}

	// Setup router
	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/signin", authHandler.Signin)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/signout", authHandler.Signout)
	}

	// API routes
	api := r.Group("/api", middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// Projects
		api.POST("/project", projectHandler.Create)
		api.GET("/projects", projectHandler.List)
		api.GET("/project/:projectId", projectHandler.Get)
		api.GET("/project/:projectId/report", projectHandler.GetJSONReport)
		api.PUT("/project/:projectId", projectHandler.Update)
		api.DELETE("/project/:projectId", projectHandler.Delete)
		api.POST("/project/:projectId/user", projectHandler.AddUser)
		api.DELETE("/project/:projectId/user/:userId", projectHandler.RemoveUser)

		// Segments
		api.POST("/segment/:segmentId/error", segmentHandler.CreateError)
		api.PATCH("/segment/error/:errorId", segmentHandler.PatchError)
		api.DELETE("/segment/error/:errorId", segmentHandler.DeleteError)

		// Typology
		api.GET("/typology", typologyHandler.Get)
	}

	// Superadmin routes
	admin := r.Group("/api", middleware.SuperadminMiddleware(cfg.JWTSecret))
	{
		admin.POST("/typology", typologyHandler.Import)
		admin.DELETE("/user/:userId/projects", projectHandler.RemoveUserFromAllProjects)
	}

	log.Printf("API server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
