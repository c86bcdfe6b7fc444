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

	"mazadly/internal/caching"
	"mazadly/internal/config"
	"mazadly/internal/handlers"
	"mazadly/internal/jobs"
	"mazadly/internal/jobs/background"
	appmiddleware "mazadly/internal/middleware"
	"mazadly/internal/repositories"
	"mazadly/internal/services"
	"mazadly/internal/upstream"
	"mazadly/pkg/database"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
)

const (
	accessTokenTTLSeconds  = 15 * 60
	refreshTokenTTLSeconds = 30 * 24 * 60 * 60
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = random.String(32)
		log.Println("JWT_SECRET not set, generated an ephemeral development secret")
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	cacheService := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	objectStore, err := services.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Repositories
	categoryRepo := repositories.NewCategoryRepository(db)
	listingRepo := repositories.NewListingRepository(db)
	userRepo := repositories.NewUserRepository(db)
	identityRepo := repositories.NewIdentityRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)

	// Task queue for identity review processing
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	taskClient := asynq.NewClient(redisOpt)
	defer taskClient.Close()

	taskServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
	})
	reviewWorker := jobs.NewReviewWorker(identityRepo, userRepo)
	go func() {
		if err := taskServer.Run(reviewWorker.Mux()); err != nil {
			log.Fatalf("Task server failed: %v", err)
		}
	}()

	// Services
	normalizer := services.NewURLNormalizer(cfg)
	mediaService := services.NewMediaService(objectStore, normalizer, cfg.MediaBucket)
	catalogService := services.NewCatalogService(categoryRepo, cacheService)
	listingService := services.NewListingService(listingRepo, catalogService, cacheService)
	authService := services.NewAuthService(tokenRepo, cfg.JWTSecret, accessTokenTTLSeconds, refreshTokenTTLSeconds)
	noticeService := services.NewProfileNoticeService(userRepo, cacheService)
	identityService := services.NewIdentityService(identityRepo, userRepo, mediaService, taskClient)

	// Countdown engine ticks every second over all open listings
	countdownEngine, err := services.NewCountdownEngine(listingRepo)
	if err != nil {
		log.Fatalf("Failed to create countdown engine: %v", err)
	}
	if err := countdownEngine.Start(ctx); err != nil {
		log.Fatalf("Failed to start countdown engine: %v", err)
	}

	// Legacy API mirror, only when an upstream is configured
	var syncer *upstream.Syncer
	if cfg.UpstreamBaseURL != "" {
		client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey)
		syncer = upstream.NewSyncer(client, categoryRepo, listingRepo, cacheService)
	}

	scheduler, err := background.NewJobScheduler(syncer, catalogService, authService)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authService, userRepo)
	categoryHandlers := handlers.NewCategoryHandlers(categoryRepo, catalogService)
	listingHandlers := handlers.NewListingHandlers(listingService, countdownEngine)
	userHandlers := handlers.NewUserHandlers(userRepo, mediaService, normalizer)
	noticeHandlers := handlers.NewNoticeHandlers(noticeService, userRepo)
	identityHandlers := handlers.NewIdentityHandlers(identityService, mediaService)
	healthHandlers := handlers.NewHealthHandlers(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Pre(middleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.Health)
	e.GET("/ready", healthHandlers.Ready)

	v1 := e.Group("/v1")

	// Public routes
	v1.POST("/auth/signup", authHandlers.Signup)
	v1.POST("/auth/login", authHandlers.Login)
	v1.POST("/auth/refresh", authHandlers.Refresh)

	v1.GET("/categories", categoryHandlers.List)
	v1.GET("/categories/tree", categoryHandlers.Tree)
	v1.GET("/categories/:id", categoryHandlers.Get)
	v1.GET("/categories/:id/children", categoryHandlers.Children)

	v1.GET("/listings", listingHandlers.Browse)
	v1.GET("/listings/countdowns", listingHandlers.Countdowns)
	v1.GET("/listings/:id", listingHandlers.Get)
	v1.GET("/listings/:id/countdown", listingHandlers.Countdown)

	v1.GET("/users/:id", userHandlers.PublicProfile)

	// Authenticated routes
	authed := v1.Group("", echojwt.WithConfig(appmiddleware.JWTConfig(cfg.JWTSecret)))
	authed.POST("/auth/logout", authHandlers.Logout)
	authed.GET("/me", authHandlers.Me)
	authed.GET("/me/profile", userHandlers.Profile)
	authed.PATCH("/me/profile", userHandlers.UpdateProfile)
	authed.POST("/me/avatar", userHandlers.UploadAvatar)
	authed.POST("/me/cover", userHandlers.UploadCover)

	authed.GET("/me/notice", noticeHandlers.Get)
	authed.POST("/me/notice/postpone", noticeHandlers.Postpone)
	authed.POST("/me/notice/dismiss", noticeHandlers.Dismiss)

	authed.GET("/me/identity", identityHandlers.Get)
	authed.POST("/me/identity/documents/:field", identityHandlers.UploadDocument)
	authed.GET("/me/identity/documents/:field/url", identityHandlers.DocumentURL)
	authed.POST("/me/identity/submit", identityHandlers.Submit)
	authed.POST("/me/identity/certification", identityHandlers.SubmitCertification)

	authed.POST("/listings", listingHandlers.Create)
	authed.DELETE("/listings/:id", listingHandlers.Delete)
	authed.GET("/me/listings", listingHandlers.MyListings)
	authed.POST("/listings/:id/bids", listingHandlers.PlaceBid)

	authed.POST("/categories", categoryHandlers.Create)
	authed.DELETE("/categories/:id", categoryHandlers.Delete)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	if err := scheduler.Stop(); err != nil {
		log.Printf("Job scheduler shutdown error: %v", err)
	}
	if err := countdownEngine.Stop(); err != nil {
		log.Printf("Countdown engine shutdown error: %v", err)
	}
	taskServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
}
