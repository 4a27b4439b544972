package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// ScoringHandler handles scoring HTTP requests
type ScoringHandler struct {
	scoring *services.ScoringService
}

// NewScoringHandler creates a new scoring handler
func NewScoringHandler(scoring *services.ScoringService) *ScoringHandler {
	return &ScoringHandler{scoring: scoring}
}

type scoreRequestBody struct {
	UserID     string               `json:"user_id"`
	Query      string               `json:"query"`
	Location   entities.Location    `json:"location"`
	RadiusKm   float64              `json:"radius_km"`
	Limit      int                  `json:"limit"`
	Candidates []entities.Candidate `json:"candidates,omitempty"`
	At         time.Time            `json:"at,omitempty"`
}

// ScoreSearch handles POST /api/search/score
func (h *ScoringHandler) ScoreSearch(w http.ResponseWriter, r *http.Request) {
	var body scoreRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.UserID == "" {
		body.UserID = services.AnonymousUserID(r.UserAgent(), clientIP(r))
	}

	response, err := h.scoring.Score(r.Context(), services.ScoreRequest{
		UserID:     body.UserID,
		Query:      body.Query,
		Location:   body.Location,
		RadiusKm:   body.RadiusKm,
		Limit:      body.Limit,
		Candidates: body.Candidates,
		At:         body.At,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}
