package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// InteractionHandler accepts tracked user interactions
type InteractionHandler struct {
	tracking *services.TrackingService
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(tracking *services.TrackingService) *InteractionHandler {
	return &InteractionHandler{tracking: tracking}
}

type trackRequestBody struct {
	UserID       string             `json:"user_id"`
	SessionID    string             `json:"session_id"`
	BusinessID   string             `json:"business_id"`
	BusinessName string             `json:"business_name"`
	Kind         string             `json:"kind"`
	Query        string             `json:"query"`
	Category     string             `json:"category"`
	Tags         []string           `json:"tags"`
	Location     *entities.Location `json:"location"`
	DwellSeconds int                `json:"dwell_seconds"`
}

// TrackInteraction handles POST /api/interactions. Acceptance means
// the event was validated and queued; persistence is asynchronous.
func (h *InteractionHandler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	var body trackRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.UserID == "" {
		body.UserID = services.AnonymousUserID(r.UserAgent(), clientIP(r))
	}

	interaction := &entities.Interaction{
		UserID:       body.UserID,
		SessionID:    body.SessionID,
		BusinessID:   body.BusinessID,
		BusinessName: body.BusinessName,
		Kind:         entities.InteractionKind(body.Kind),
		Query:        body.Query,
		Category:     body.Category,
		Tags:         body.Tags,
		Location:     body.Location,
	}

	if err := h.tracking.Track(r.Context(), interaction, body.DwellSeconds); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"id":      interaction.ID,
		"user_id": interaction.UserID,
	})
}
