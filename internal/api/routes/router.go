package routes

import (
	"net/http"

	"github.com/nearspot/business-discovery/internal/api/handlers"
	"github.com/nearspot/business-discovery/internal/api/middleware"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	scoringHandler        *handlers.ScoringHandler
	recommendationHandler *handlers.RecommendationHandler
	interactionHandler    *handlers.InteractionHandler
	trendingHandler       *handlers.TrendingHandler
	contextHandler        *handlers.ContextHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	scoringHandler *handlers.ScoringHandler,
	recommendationHandler *handlers.RecommendationHandler,
	interactionHandler *handlers.InteractionHandler,
	trendingHandler *handlers.TrendingHandler,
	contextHandler *handlers.ContextHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		scoringHandler:        scoringHandler,
		recommendationHandler: recommendationHandler,
		interactionHandler:    interactionHandler,
		trendingHandler:       trendingHandler,
		contextHandler:        contextHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Scoring and recommendations
	r.mux.HandleFunc("POST /api/search/score", r.scoringHandler.ScoreSearch)
	r.mux.HandleFunc("GET /api/recommendations", r.recommendationHandler.GetRecommendations)

	// Interaction tracking
	r.mux.HandleFunc("POST /api/interactions", r.interactionHandler.TrackInteraction)

	// Trending and suggestions
	r.mux.HandleFunc("GET /api/trending", r.trendingHandler.GetTrending)
	r.mux.HandleFunc("GET /api/trending/analytics", r.trendingHandler.GetAnalytics)
	r.mux.HandleFunc("GET /api/search/suggestions", r.trendingHandler.GetSuggestions)

	// Situational context
	r.mux.HandleFunc("GET /api/context", r.contextHandler.GetContext)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
