package entities

// Candidate is one entry of the raw candidate list produced by the
// external retrieval subsystem. BaseRelevance follows the retrieval
// convention: lower means more relevant.
type Candidate struct {
	BusinessID    string   `json:"business_id"`
	Name          string   `json:"name"`
	BaseRelevance float64  `json:"base_relevance"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags,omitempty"`
	Location      Location `json:"location"`
	DistanceKm    float64  `json:"distance_km"`
}

// BoostSet holds the per-factor multipliers applied to one candidate.
// Neutral is 1.0 for every factor.
type BoostSet struct {
	Time          float64 `json:"time"`
	Weather       float64 `json:"weather"`
	History       float64 `json:"history"`
	Collaborative float64 `json:"collaborative"`
}

// Product returns the combined multiplier.
func (b BoostSet) Product() float64 {
	return b.Time * b.Weather * b.History * b.Collaborative
}

// ScoredCandidate is the per-request scoring result for one candidate.
// Lower FinalScore always means higher rank.
type ScoredCandidate struct {
	Candidate  Candidate `json:"candidate"`
	BaseScore  float64   `json:"base_score"`
	Boosts     BoostSet  `json:"boosts"`
	FinalScore float64   `json:"final_score"`
	Reasons    []string  `json:"reasons,omitempty"`
}

// Recommendation is one proactively recommended business.
type Recommendation struct {
	BusinessID string   `json:"business_id"`
	Name       string   `json:"name"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Score      float64  `json:"score"`
	DistanceKm float64  `json:"distance_km,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}
