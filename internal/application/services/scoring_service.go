package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
	"github.com/nearspot/business-discovery/pkg/config"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/nearspot/business-discovery/pkg/geo"
)

// Search regimes. Constrained searches weigh distance against the
// requested radius; wide searches normalize it within the result set.
const (
	RegimeConstrained = "constrained"
	RegimeWide        = "wide"
)

const defaultCandidateLimit = 20

// ScoreRequest is one scoring invocation. Candidates may be supplied
// directly; when absent they are pulled from the retrieval source.
type ScoreRequest struct {
	UserID     string
	Query      string
	Location   entities.Location
	RadiusKm   float64
	Candidates []entities.Candidate
	Limit      int
	At         time.Time
}

// ScoreResponse carries the ranked results plus the context they were
// scored under. Degraded reports that personalization signals were
// unavailable and neutral boosts were used instead.
type ScoreResponse struct {
	Results  []entities.ScoredCandidate `json:"results"`
	Context  *entities.ContextualFactors `json:"context"`
	Regime   string                     `json:"regime"`
	Degraded bool                       `json:"degraded"`
}

// ScoringService fuses retrieval relevance, distance, and the four
// contextual boost factors into a single ranking. Lower final score
// always means higher rank.
type ScoringService struct {
	candidates    providers.CandidateSource
	contextSvc    *ContextService
	preferences   *PreferenceService
	similarity    *SimilarityService
	collaborative *CollaborativeService
	cfg           *config.RecommendationConfig
	metrics       *observability.Metrics
}

// NewScoringService creates a new scoring service
func NewScoringService(
	candidates providers.CandidateSource,
	contextSvc *ContextService,
	preferences *PreferenceService,
	similarity *SimilarityService,
	collaborative *CollaborativeService,
	cfg *config.RecommendationConfig,
	metrics *observability.Metrics,
) *ScoringService {
	return &ScoringService{
		candidates:    candidates,
		contextSvc:    contextSvc,
		preferences:   preferences,
		similarity:    similarity,
		collaborative: collaborative,
		cfg:           cfg,
		metrics:       metrics,
	}
}

// Score ranks candidates for a request. Personalization failures
// degrade to neutral boosts; the full ranked list is always returned.
func (s *ScoringService) Score(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	ctx, span := observability.StartSpan(ctx, "scoring.score")
	defer span.End()
	start := time.Now()

	if err := geo.Validate(req.Location.Latitude, req.Location.Longitude); err != nil {
		return nil, err
	}

	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.cfg.WideSearchThresholdKm
	}
	regime := RegimeConstrained
	if radius >= s.cfg.WideSearchThresholdKm {
		regime = RegimeWide
	}

	candidates := req.Candidates
	if len(candidates) == 0 && s.candidates != nil {
		limit := req.Limit
		if limit <= 0 {
			limit = defaultCandidateLimit
		}
		var err error
		candidates, err = s.candidates.Search(ctx, req.Query, req.Location, radius, limit)
		if err != nil {
			return nil, err
		}
	}

	factors, err := s.contextSvc.Current(ctx, req.Location.Latitude, req.Location.Longitude, req.At)
	if err != nil {
		return nil, err
	}

	response := &ScoreResponse{
		Context: factors,
		Regime:  regime,
	}
	if len(candidates) == 0 {
		response.Results = []entities.ScoredCandidate{}
		return response, nil
	}

	vector, neighbors, degraded := s.personalization(ctx, req.UserID)
	response.Degraded = degraded

	results := s.fuse(ctx, candidates, req.Location, radius, regime, factors, vector, neighbors)

	popularity := s.tiePopularity(ctx, results)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FinalScore != results[j].FinalScore {
			return results[i].FinalScore < results[j].FinalScore
		}
		pi, pj := popularity[results[i].Candidate.BusinessID], popularity[results[j].Candidate.BusinessID]
		if pi != pj {
			return pi > pj
		}
		return results[i].Candidate.BusinessID < results[j].Candidate.BusinessID
	})
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}
	response.Results = results

	observability.RecordScoreMetric(ctx, s.metrics, len(candidates), degraded, time.Since(start))
	return response, nil
}

// tiePopularity looks up interaction counts for candidates whose final
// scores collide, so an exact tie ranks the better-known business
// first. Lookups are best effort; an unreachable store leaves ties to
// the ID comparison.
func (s *ScoringService) tiePopularity(ctx context.Context, results []entities.ScoredCandidate) map[string]int64 {
	occurrences := make(map[float64]int, len(results))
	for _, result := range results {
		occurrences[result.FinalScore]++
	}

	popularity := make(map[string]int64)
	for _, result := range results {
		if occurrences[result.FinalScore] < 2 {
			continue
		}
		popularity[result.Candidate.BusinessID] = s.collaborative.Popularity(ctx, result.Candidate.BusinessID)
	}
	return popularity
}

// personalization loads the user's preference vector and neighbor set.
// Store failures and thin histories both collapse to neutral signals;
// only a hard store outage marks the response degraded.
func (s *ScoringService) personalization(ctx context.Context, userID string) (*entities.PreferenceVector, []entities.SimilarityEdge, bool) {
	if userID == "" {
		return nil, nil, false
	}

	degraded := false

	vector, err := s.preferences.Vector(ctx, userID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("preference vector unavailable, scoring with neutral history boost")
		vector = nil
		degraded = degraded || apperrors.IsType(err, apperrors.ErrorTypeStoreUnavailable)
	}

	neighbors, err := s.similarity.Neighbors(ctx, userID)
	if err != nil {
		if !apperrors.IsType(err, apperrors.ErrorTypeInsufficientHistory) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("neighbor discovery unavailable, scoring with neutral collaborative boost")
			degraded = degraded || apperrors.IsType(err, apperrors.ErrorTypeStoreUnavailable)
		}
		neighbors = nil
	}

	return vector, neighbors, degraded
}

func (s *ScoringService) fuse(
	ctx context.Context,
	candidates []entities.Candidate,
	origin entities.Location,
	radius float64,
	regime string,
	factors *entities.ContextualFactors,
	vector *entities.PreferenceVector,
	neighbors []entities.SimilarityEdge,
) []entities.ScoredCandidate {
	relevanceWeight := s.cfg.ConstrainedRelevanceWeight
	distanceWeight := s.cfg.ConstrainedDistanceWeight
	if regime == RegimeWide {
		relevanceWeight = s.cfg.WideRelevanceWeight
		distanceWeight = s.cfg.WideDistanceWeight
	}

	var maxRelevance, maxDistance float64
	for i := range candidates {
		if candidates[i].DistanceKm == 0 && (candidates[i].Location != origin) {
			candidates[i].DistanceKm = geo.Distance(
				origin.Latitude, origin.Longitude,
				candidates[i].Location.Latitude, candidates[i].Location.Longitude,
			)
		}
		if candidates[i].BaseRelevance > maxRelevance {
			maxRelevance = candidates[i].BaseRelevance
		}
		if candidates[i].DistanceKm > maxDistance {
			maxDistance = candidates[i].DistanceKm
		}
	}

	results := make([]entities.ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		relevance := 0.0
		if maxRelevance > 0 {
			relevance = candidate.BaseRelevance / maxRelevance
		}

		distanceFactor := 0.0
		if regime == RegimeWide {
			if maxDistance > 0 {
				distanceFactor = candidate.DistanceKm / maxDistance
			}
		} else if radius > 0 {
			distanceFactor = candidate.DistanceKm / radius
			if distanceFactor > 1 {
				distanceFactor = 1
			}
		}

		base := relevanceWeight*relevance + distanceWeight*distanceFactor

		boosts := entities.BoostSet{
			Time:          matchBoost(factors.TimeBoosts, candidate.Category, candidate.Name, candidate.Tags),
			Weather:       matchBoost(factors.WeatherBoosts, candidate.Category, candidate.Name, candidate.Tags),
			History:       s.historyBoost(vector, candidate),
			Collaborative: s.collaborative.BoostFor(ctx, neighbors, candidate.BusinessID),
		}

		// Dividing by the combined multiplier keeps lower-is-better
		// intact: any boost above neutral shrinks the final score.
		results = append(results, entities.ScoredCandidate{
			Candidate:  candidate,
			BaseScore:  base,
			Boosts:     boosts,
			FinalScore: base / boosts.Product(),
			Reasons:    s.reasons(boosts),
		})
	}
	return results
}

// historyBoost maps the share of the preference vector matching a
// candidate onto the configured boost range. This is the only factor
// allowed below neutral: no overlap with established tastes demotes.
func (s *ScoringService) historyBoost(vector *entities.PreferenceVector, candidate entities.Candidate) float64 {
	if vector.IsEmpty() {
		return 1.0
	}

	text := strings.ToLower(candidate.Category + " " + candidate.Name + " " + strings.Join(candidate.Tags, " "))

	var total, matched float64
	for key := range vector.Keys() {
		weight := vector.Weight(key)
		total += weight
		if strings.Contains(text, key) {
			matched += weight
		}
	}
	if total <= 0 {
		return 1.0
	}

	return s.cfg.HistoryBoostMin + (s.cfg.HistoryBoostMax-s.cfg.HistoryBoostMin)*(matched/total)
}

// reasons lists the factors that pushed a candidate up, strongest
// first. Only boosts clearly above neutral earn an explanation.
func (s *ScoringService) reasons(boosts entities.BoostSet) []string {
	type factor struct {
		label string
		value float64
	}
	factors := []factor{
		{"matches the time of day", boosts.Time},
		{"suits the current weather", boosts.Weather},
		{"matches your past preferences", boosts.History},
		{"popular with similar users", boosts.Collaborative},
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].value > factors[j].value
	})

	var reasons []string
	for _, f := range factors {
		if f.value > s.cfg.ReasonThreshold {
			reasons = append(reasons, f.label)
		}
	}
	return reasons
}
