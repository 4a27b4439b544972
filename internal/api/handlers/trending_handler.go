package handlers

import (
	"net/http"

	"github.com/nearspot/business-discovery/internal/application/services"
)

// TrendingHandler serves trending queries and search analytics
type TrendingHandler struct {
	trending *services.TrendingService
}

// NewTrendingHandler creates a new trending handler
func NewTrendingHandler(trending *services.TrendingService) *TrendingHandler {
	return &TrendingHandler{trending: trending}
}

// GetTrending handles GET /api/trending
func (h *TrendingHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	trends, err := h.trending.Top(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"trending": trends,
		"count":    len(trends),
	})
}

// GetSuggestions handles GET /api/search/suggestions
func (h *TrendingHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", 5)

	suggestions, err := h.trending.PeopleAlsoSearched(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":       services.NormalizeQuery(query),
		"suggestions": suggestions,
	})
}

// GetAnalytics handles GET /api/trending/analytics
func (h *TrendingHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.trending.Analytics(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}
