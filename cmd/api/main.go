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

	"github.com/nearspot/business-discovery/internal/adapters/cache"
	"github.com/nearspot/business-discovery/internal/adapters/database"
	"github.com/nearspot/business-discovery/internal/adapters/events"
	"github.com/nearspot/business-discovery/internal/adapters/providers/weather"
	"github.com/nearspot/business-discovery/internal/adapters/search"
	"github.com/nearspot/business-discovery/internal/adapters/store"
	"github.com/nearspot/business-discovery/internal/api/handlers"
	"github.com/nearspot/business-discovery/internal/api/middleware"
	"github.com/nearspot/business-discovery/internal/api/routes"
	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/nearspot/business-discovery/internal/infrastructure/clients/postgres"
	"github.com/nearspot/business-discovery/internal/infrastructure/clients/redis"
	"github.com/nearspot/business-discovery/internal/infrastructure/clients/typesense"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
	"github.com/nearspot/business-discovery/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Recommendation.Validate(); err != nil {
		log.Fatalf("Invalid recommendation configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
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

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize Redis client. The interaction store degrades to
	// neutral scoring when Redis is down, so startup continues.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize database client for business metadata enrichment
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Printf("Warning: Failed to initialize PostgreSQL client: %v", err)
		pgClient = nil
	} else {
		defer pgClient.Close()
		log.Println("PostgreSQL client initialized successfully")
	}

	// Initialize Typesense client for candidate retrieval
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Initialize adapters
	interactionStore := store.NewRedisInteractionStore(redisClient, &cfg.Recommendation)

	var businessRepo repositories.BusinessRepository
	if pgClient != nil {
		businessRepo = database.NewBusinessAdapter(pgClient)
	}

	var candidateSource providers.CandidateSource
	if typesenseClient != nil {
		if err := typesenseClient.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		candidateSource = search.NewTypesenseCandidateSource(typesenseClient)
	}

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	weatherProvider := weather.NewSimulatedProvider(
		time.Duration(cfg.Recommendation.WeatherCacheTTLMinutes) * time.Minute)

	// Initialize services
	contextService := services.NewContextService(weatherProvider)
	preferenceService := services.NewPreferenceService(interactionStore, cfg.Recommendation.PreferenceHalfLifeDays)
	similarityService := services.NewSimilarityService(
		interactionStore,
		preferenceService,
		cacheProvider,
		cfg.Recommendation.NeighborLimit,
		cfg.Recommendation.MinInteractions,
		cfg.Recommendation.SimilarityThreshold,
		time.Duration(cfg.Recommendation.NeighborCacheTTLMinutes)*time.Minute,
	)
	collaborativeService := services.NewCollaborativeService(
		interactionStore,
		businessRepo,
		similarityService,
		cfg.Recommendation.CollaborativeBoostMax,
	)
	scoringService := services.NewScoringService(
		candidateSource,
		contextService,
		preferenceService,
		similarityService,
		collaborativeService,
		&cfg.Recommendation,
		metrics,
	)
	trendingService := services.NewTrendingService(interactionStore)
	trackingService := services.NewTrackingService(
		interactionStore,
		trendingService,
		eventBus,
		metrics,
		cfg.Recommendation.TrackQueueSize,
	)

	// Initialize handlers
	scoringHandler := handlers.NewScoringHandler(scoringService)
	recommendationHandler := handlers.NewRecommendationHandler(collaborativeService)
	interactionHandler := handlers.NewInteractionHandler(trackingService)
	trendingHandler := handlers.NewTrendingHandler(trendingService)
	contextHandler := handlers.NewContextHandler(contextService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		scoringHandler,
		recommendationHandler,
		interactionHandler,
		trendingHandler,
		contextHandler,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
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

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Drain the tracking queue before closing downstream connections
	trackingService.Close()

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
