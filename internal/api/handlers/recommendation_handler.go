package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/pkg/geo"
)

// RecommendationHandler handles collaborative recommendation requests
type RecommendationHandler struct {
	collaborative *services.CollaborativeService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(collaborative *services.CollaborativeService) *RecommendationHandler {
	return &RecommendationHandler{collaborative: collaborative}
}

// GetRecommendations handles GET /api/recommendations
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = services.AnonymousUserID(r.UserAgent(), clientIP(r))
	}

	var exclude map[string]struct{}
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		exclude = make(map[string]struct{})
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				exclude[id] = struct{}{}
			}
		}
	}

	// Location is optional; when present it annotates results with the
	// distance from the caller.
	var origin *entities.Location
	lat := queryFloat(r, "lat", math.NaN())
	lng := queryFloat(r, "lng", math.NaN())
	if !math.IsNaN(lat) || !math.IsNaN(lng) {
		if err := geo.Validate(lat, lng); err != nil {
			respondWithAppError(w, err)
			return
		}
		origin = &entities.Location{Latitude: lat, Longitude: lng}
	}

	limit := queryInt(r, "limit", 10)

	recommendations, err := h.collaborative.Recommend(r.Context(), userID, origin, exclude, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}
