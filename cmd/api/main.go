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

	"github.com/findmypark/findmypark-nyc/internal/adapters/cache"
	"github.com/findmypark/findmypark-nyc/internal/adapters/database"
	"github.com/findmypark/findmypark-nyc/internal/adapters/events"
	"github.com/findmypark/findmypark-nyc/internal/adapters/search"
	"github.com/findmypark/findmypark-nyc/internal/api/handlers"
	"github.com/findmypark/findmypark-nyc/internal/api/routes"
	"github.com/findmypark/findmypark-nyc/internal/application/services"
	"github.com/findmypark/findmypark-nyc/internal/domain/providers"
	"github.com/findmypark/findmypark-nyc/internal/domain/repositories"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/openai"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/postgres"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/redis"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/clients/typesense"
	"github.com/findmypark/findmypark-nyc/internal/infrastructure/observability"
	"github.com/findmypark/findmypark-nyc/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client; the application works without caching
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client; search degrades to a catalog scan
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters
	baseParkAdapter := database.NewParkAdapter(pgClient)

	var parkRepo repositories.ParkRepository
	var invalidator services.ParkCacheInvalidator
	if cacheProvider != nil {
		cachedParkAdapter := database.NewCachedParkAdapter(baseParkAdapter, cacheProvider)
		parkRepo = cachedParkAdapter
		invalidator = cachedParkAdapter
		log.Println("Park adapter wrapped with caching layer")
	} else {
		parkRepo = baseParkAdapter
		log.Println("Park adapter running without cache (Redis unavailable)")
	}

	facilityRepo := database.NewFacilityAdapter(pgClient)
	trailRepo := database.NewTrailAdapter(pgClient)
	reviewRepo := database.NewReviewAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	var searchRepo repositories.ParkSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	var recommender providers.ParkRecommender
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; AI recommendations disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			recommender = openaiClient
		}
	}

	// Initialize services
	parkService := services.NewParkService(parkRepo, searchRepo)
	facilityService := services.NewFacilityService(facilityRepo, trailRepo, parkRepo)
	reviewService := services.NewReviewService(reviewRepo, parkRepo, facilityRepo, userRepo, eventBus, invalidator)
	userService := services.NewUserService(userRepo, parkRepo)
	recommendationService := services.NewRecommendationService(parkRepo, userRepo)
	aiRecommendationService := services.NewAIRecommendationService(parkRepo, userRepo, recommender)

	// Initialize handlers
	parkHandler := handlers.NewParkHandler(parkService)
	facilityHandler := handlers.NewFacilityHandler(facilityService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	userHandler := handlers.NewUserHandler(userService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	aiRecommendationHandler := handlers.NewAIRecommendationHandler(aiRecommendationService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	// Set up router
	router := routes.NewRouter(
		parkHandler,
		facilityHandler,
		reviewHandler,
		userHandler,
		recommendationHandler,
		aiRecommendationHandler,
		sseHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		// Long write timeout so SSE streams aren't cut off
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
