package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dejargonator/dejargonator/internal/cache"
	"github.com/dejargonator/dejargonator/internal/config"
	"github.com/dejargonator/dejargonator/internal/database"
	"github.com/dejargonator/dejargonator/internal/gateway"
	"github.com/dejargonator/dejargonator/internal/handlers"
	"github.com/dejargonator/dejargonator/internal/mirror"
	"github.com/dejargonator/dejargonator/internal/pipeline"
	"github.com/dejargonator/dejargonator/internal/services"
)

func main() {
	// 1. Environment & config
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("init logger:", err)
	}
	defer logger.Sync()

	// 2. Database connection (remote persistence gateway backend)
	db, err := database.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	gw := gateway.NewGormGateway(db)

	// 3. Analysis cache (best effort: a dead Redis just disables caching)
	var analysisCache *cache.AnalysisCache
	if ac, err := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.AnalysisTTL); err != nil {
		logger.Warn("analysis cache disabled", zap.Error(err))
	} else {
		analysisCache = ac
		defer analysisCache.Close()
	}

	// 4. Local mirror (best effort as well)
	var boardMirror mirror.Mirror
	if sm, err := mirror.OpenSQLite(cfg.MirrorPath); err != nil {
		logger.Warn("board mirror disabled", zap.Error(err))
	} else {
		boardMirror = sm
		defer sm.Close()
	}

	// 5. Core services
	llmService, err := services.NewLLMService(cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Fatal("llm service", zap.Error(err))
	}
	creditService := services.NewCreditService(db, logger)
	registry := pipeline.NewRegistry(gw, boardMirror, pipeline.NopRenderer{}, logger)

	// 6. Handlers
	analysisHandler := handlers.NewAnalysisHandler(llmService, creditService, analysisCache, registry, logger)
	dashboardHandler := handlers.NewDashboardHandler(registry)

	// 7. Router & CORS
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	if cfg.CORSOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.CORSOrigins}
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID", "X-Request-ID"}
	r.Use(cors.New(corsConfig))
	r.Use(handlers.RequestID())

	// 8. Routes
	api := r.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck)

		authed := api.Group("", handlers.RequireUser())
		{
			authed.POST("/analyze", analysisHandler.Analyze)
			authed.POST("/documents", analysisHandler.GenerateDocument)
			authed.POST("/credits", analysisHandler.AddCredits)

			authed.GET("/dashboard", dashboardHandler.Get)
			authed.GET("/dashboard/cached", dashboardHandler.GetCached)
			authed.POST("/dashboard/move", dashboardHandler.Move)
			authed.POST("/dashboard/duplicate", dashboardHandler.Duplicate)
			authed.POST("/dashboard/delete", dashboardHandler.Delete)
		}
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
