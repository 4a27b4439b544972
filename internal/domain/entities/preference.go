package entities

import (
	"time"
)

// PreferenceVector is a sparse weighted preference profile derived from
// a user's interaction history. It is recomputed on demand and never
// the source of truth.
type PreferenceVector struct {
	UserID          string             `json:"user_id"`
	CategoryWeights map[string]float64 `json:"category_weights"`
	TagWeights      map[string]float64 `json:"tag_weights"`
	LastUpdated     time.Time          `json:"last_updated"`
}

// IsEmpty reports whether the vector carries no signal. Empty vectors
// are excluded from similarity computation entirely.
func (v *PreferenceVector) IsEmpty() bool {
	return v == nil || (len(v.CategoryWeights) == 0 && len(v.TagWeights) == 0)
}

// Weight returns the combined weight for a key across categories and tags.
func (v *PreferenceVector) Weight(key string) float64 {
	if v == nil {
		return 0
	}
	return v.CategoryWeights[key] + v.TagWeights[key]
}

// Keys returns the union of category and tag keys.
func (v *PreferenceVector) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(v.CategoryWeights)+len(v.TagWeights))
	for k := range v.CategoryWeights {
		keys[k] = struct{}{}
	}
	for k := range v.TagWeights {
		keys[k] = struct{}{}
	}
	return keys
}

// SimilarityEdge is an ephemeral pairwise similarity between two users.
type SimilarityEdge struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}
