package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/nearspot/business-discovery/internal/application/services"
)

// ContextHandler exposes the situational context used by scoring
type ContextHandler struct {
	contextSvc *services.ContextService
}

// NewContextHandler creates a new context handler
func NewContextHandler(contextSvc *services.ContextService) *ContextHandler {
	return &ContextHandler{contextSvc: contextSvc}
}

// GetContext handles GET /api/context
func (h *ContextHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	lat := queryFloat(r, "lat", math.NaN())
	lng := queryFloat(r, "lng", math.NaN())
	if math.IsNaN(lat) || math.IsNaN(lng) {
		respondWithError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	var at time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "at must be RFC3339")
			return
		}
		at = parsed
	}

	factors, err := h.contextSvc.Current(r.Context(), lat, lng, at)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, factors)
}
