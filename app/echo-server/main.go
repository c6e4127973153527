package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bestinclick/app/echo-server/metrics"
	"bestinclick/app/echo-server/router"
	"bestinclick/business/behavior"
	"bestinclick/business/jobs"
	"bestinclick/business/recommend"
	"bestinclick/business/scoring"
	"bestinclick/business/similarity"
	"bestinclick/business/tracking"
	"bestinclick/internal/middleware"
	psqlRepo "bestinclick/internal/repository/postgres"
	redisRepo "bestinclick/internal/repository/redis"
	"bestinclick/internal/rest"
	"bestinclick/pkg/config"
	"bestinclick/pkg/database"
	redisdb "bestinclick/pkg/database/redis"
	"bestinclick/pkg/logger"
	pkgmetrics "bestinclick/pkg/metrics"
	"bestinclick/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting BestInClick recommendations", "version", cfg.App.Version)

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	metrics.Init()
	pkgmetrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		if err := redisdb.CloseRedisClient(redisClient); err != nil {
			logger.Error("Failed to close redis", "error", err)
		}
	}()

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	behaviorRepo := psqlRepo.NewBehaviorRepository(db)
	scoreRepo := psqlRepo.NewScoreRepository(db)
	similarityRepo := psqlRepo.NewSimilarityRepository(db)
	sessionRepo := psqlRepo.NewRecommendationSessionRepository(db)
	recoCache := redisRepo.NewRecommendationCache(redisClient, redisRepo.DefaultBreakerConfig())
	jobLock := redisRepo.NewJobLock(redisClient)

	// Init service
	scoringService := scoring.NewScoringService(behaviorRepo, scoreRepo, scoring.DefaultConfig())

	similarityCfg := similarity.DefaultConfig()
	similarityCfg.MaxUsers = cfg.Recommend.SimilarityMaxUsers
	similarityService := similarity.NewSimilarityService(behaviorRepo, similarityRepo, similarityCfg)

	trackingService := tracking.NewTrackingService(sessionRepo)

	recommendCfg := recommend.DefaultConfig()
	recommendCfg.Timeout = cfg.Recommend.Timeout
	recommendCfg.CacheTTL = cfg.Recommend.CacheTTL
	recommendService := recommend.NewRecommendationService(behaviorRepo, similarityRepo, productRepo, recoCache, trackingService, recommendCfg)

	behaviorService := behavior.NewBehaviorService(behaviorRepo, productRepo, scoringService, recoCache)

	jobsCfg := jobs.DefaultConfig()
	jobsCfg.BatchSize = cfg.Recommend.ScoreBatchSize
	jobsCfg.RatePerSecond = cfg.Recommend.BatchRatePerSecond
	jobsCfg.LockTTL = cfg.Recommend.JobLockTTL
	jobsCfg.MaxUsers = cfg.Recommend.SimilarityMaxUsers
	runner := jobs.NewRunner(jobLock, productRepo, scoringService, similarityService, jobsCfg)

	// Init handler
	behaviorHandler := rest.NewBehaviorHandler(behaviorService)
	recommendationHandler := rest.NewRecommendationHandler(recommendService)
	trackingHandler := rest.NewTrackingHandler(trackingService)
	jobHandler := rest.NewJobHandler(runner)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(metrics.Middleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, rest.SessionHeader},
	}))

	// Setup routes
	router.SetMetricsRoute(e)
	api := e.Group("/api/v1")
	router.SetBehaviorRoutes(api, behaviorHandler)
	router.SetRecommendationRoutes(api, recommendationHandler, trackingHandler)
	router.SetProductRoutes(api, recommendationHandler)
	router.SetAdminRoutes(api, jobHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
