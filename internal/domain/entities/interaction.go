package entities

import (
	"time"

	apperrors "github.com/nearspot/business-discovery/pkg/errors"
)

// InteractionKind classifies a tracked user action.
type InteractionKind string

const (
	InteractionSearch   InteractionKind = "search"
	InteractionView     InteractionKind = "view"
	InteractionClick    InteractionKind = "click"
	InteractionShare    InteractionKind = "share"
	InteractionBookmark InteractionKind = "bookmark"
)

// MaxImplicitRating is the hard cap after situational multipliers.
const MaxImplicitRating = 10.0

var baseRatings = map[InteractionKind]float64{
	InteractionSearch:   1.0,
	InteractionView:     2.0,
	InteractionClick:    3.0,
	InteractionShare:    4.0,
	InteractionBookmark: 5.0,
}

// Interaction is a single immutable user action against a business.
type Interaction struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	SessionID      string          `json:"session_id"`
	BusinessID     string          `json:"business_id"`
	BusinessName   string          `json:"business_name"`
	Kind           InteractionKind `json:"kind"`
	Query          string          `json:"query,omitempty"`
	Category       string          `json:"category,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Location       *Location       `json:"location,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	ImplicitRating float64         `json:"implicit_rating"`
}

// ImplicitRatingFor derives the rating for an interaction kind, bumped
// by dwell time for view/click and capped at MaxImplicitRating.
func ImplicitRatingFor(kind InteractionKind, dwellSeconds int) float64 {
	rating, ok := baseRatings[kind]
	if !ok {
		rating = 1.0
	}

	if dwellSeconds > 0 && (kind == InteractionView || kind == InteractionClick) {
		if dwellSeconds > 30 {
			rating += 0.5
		}
		if dwellSeconds > 120 {
			rating += 1.0
		}
	}

	if rating > MaxImplicitRating {
		rating = MaxImplicitRating
	}
	return rating
}

// IsValidKind reports whether the kind is one of the tracked actions.
func IsValidKind(kind InteractionKind) bool {
	_, ok := baseRatings[kind]
	return ok
}

// Validate checks the required fields of a tracked interaction.
func (i *Interaction) Validate() error {
	if i.UserID == "" {
		return apperrors.NewMalformedInteractionError("user_id is required")
	}
	if i.BusinessID == "" && i.Kind != InteractionSearch {
		return apperrors.NewMalformedInteractionError("business_id is required for non-search interactions")
	}
	if !IsValidKind(i.Kind) {
		return apperrors.NewMalformedInteractionError("unknown interaction kind: " + string(i.Kind))
	}
	if i.Kind == InteractionSearch && i.Query == "" {
		return apperrors.NewMalformedInteractionError("query is required for search interactions")
	}
	return nil
}
