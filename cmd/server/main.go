package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appraisal-api/internal/config"
	"appraisal-api/internal/database"
	"appraisal-api/internal/handlers"
	"appraisal-api/internal/logger"
	"appraisal-api/internal/middleware"
	"appraisal-api/internal/repository"
	"appraisal-api/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Appraisal API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool. The handle is constructed here and
	// passed down explicitly; nothing holds a global connection.
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize repository and service layers
	propertyRepo := repository.NewPropertyRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	neighborhoodRepo := repository.NewNeighborhoodRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	improvementRepo := repository.NewImprovementRepository(db)
	userRepo := repository.NewUserRepository(db)
	reportRepo := repository.NewReportRepository(db)

	propertyService := services.NewPropertyService(propertyRepo, log)
	ownerService := services.NewOwnerService(ownerRepo, log)
	neighborhoodService := services.NewNeighborhoodService(neighborhoodRepo, log)
	saleService := services.NewSaleService(saleRepo, log)
	assessmentService := services.NewAssessmentService(assessmentRepo, log)
	improvementService := services.NewImprovementService(improvementRepo, log)
	authService := services.NewAuthService(userRepo, log)
	reportService := services.NewReportService(reportRepo, log)

	// Initialize handlers
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	ownerHandler := handlers.NewOwnerHandler(ownerService)
	neighborhoodHandler := handlers.NewNeighborhoodHandler(neighborhoodService)
	saleHandler := handlers.NewSaleHandler(saleService)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	improvementHandler := handlers.NewImprovementHandler(improvementService)
	authHandler := handlers.NewAuthHandler(authService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Register API v1 routes. Every operation has its own route; there is
	// no action-string dispatch.
	v1 := router.Group("/api/v1")
	{
		properties := v1.Group("/properties")
		{
			properties.GET("", propertyHandler.List)
			properties.POST("", propertyHandler.Upsert)
			properties.GET("/range", propertyHandler.Range)
			properties.GET("/count", propertyHandler.Count)
			properties.POST("/adjust-land-by-zip", propertyHandler.AdjustLandByZip)
			properties.GET("/:folio", propertyHandler.GetByFolio)
			properties.DELETE("/:folio", propertyHandler.Delete)
			properties.PATCH("/:folio/address", propertyHandler.UpdateAddress)
			properties.POST("/:folio/adjust-land", propertyHandler.AdjustLand)
			properties.POST("/:folio/reset-values", propertyHandler.ResetValues)
		}

		owners := v1.Group("/owners")
		{
			owners.GET("", ownerHandler.Search)
			owners.POST("", ownerHandler.Create)
			owners.POST("/assign", ownerHandler.Assign)
		}

		neighborhoods := v1.Group("/neighborhoods")
		{
			neighborhoods.GET("", neighborhoodHandler.List)
			neighborhoods.POST("", neighborhoodHandler.Create)
			neighborhoods.POST("/assign", neighborhoodHandler.Assign)
			neighborhoods.GET("/:code", neighborhoodHandler.GetByCode)
		}

		sales := v1.Group("/sales")
		{
			sales.GET("", saleHandler.List)
			sales.POST("", saleHandler.Record)
		}

		assessments := v1.Group("/assessments")
		{
			assessments.GET("", assessmentHandler.List)
			assessments.POST("", assessmentHandler.Upsert)
		}

		improvements := v1.Group("/improvements")
		{
			improvements.GET("", improvementHandler.List)
			improvements.POST("", improvementHandler.Add)
			improvements.DELETE("/:id", improvementHandler.Delete)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/summary", reportHandler.Summary)
			reports.GET("/:key", reportHandler.ByKey)
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
