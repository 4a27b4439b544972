package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
)

const similarUsersKeyFmt = "similar_users:%s"

// Cosine computes the similarity of two preference vectors over the
// union of their category and tag keys. The second return value is
// false when similarity is undefined: empty vectors carry no signal
// and are excluded from comparison rather than treated as zero.
func Cosine(a, b *entities.PreferenceVector) (float64, bool) {
	if a.IsEmpty() || b.IsEmpty() {
		return 0, false
	}

	keys := a.Keys()
	for k := range b.Keys() {
		keys[k] = struct{}{}
	}

	var dot, normA, normB float64
	for key := range keys {
		wa := a.Weight(key)
		wb := b.Weight(key)
		dot += wa * wb
		normA += wa * wa
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

// SimilarityService discovers a user's nearest neighbors by taste.
// Candidates come from shared businesses in the interaction log, then
// get ranked by preference-vector cosine. Results are cached briefly
// since neighbor sets drift slowly.
type SimilarityService struct {
	interactions    repositories.InteractionRepository
	preferences     *PreferenceService
	cache           providers.CacheProvider
	neighborLimit   int
	minInteractions int
	threshold       float64
	cacheTTLSeconds int
}

// NewSimilarityService creates a new similarity service
func NewSimilarityService(
	interactions repositories.InteractionRepository,
	preferences *PreferenceService,
	cache providers.CacheProvider,
	neighborLimit, minInteractions int,
	threshold float64,
	cacheTTL time.Duration,
) *SimilarityService {
	return &SimilarityService{
		interactions:    interactions,
		preferences:     preferences,
		cache:           cache,
		neighborLimit:   neighborLimit,
		minInteractions: minInteractions,
		threshold:       threshold,
		cacheTTLSeconds: int(cacheTTL.Seconds()),
	}
}

// Neighbors returns the top similar users for userID, most similar
// first. Users below the minimum interaction count get an
// InsufficientHistory error so callers can fall back to neutral
// behavior instead of ranking on noise.
func (s *SimilarityService) Neighbors(ctx context.Context, userID string) ([]entities.SimilarityEdge, error) {
	if cached, ok := s.cachedNeighbors(ctx, userID); ok {
		return cached, nil
	}

	history, err := s.interactions.History(ctx, userID, preferenceHistoryLimit)
	if err != nil {
		return nil, err
	}
	if len(history) < s.minInteractions {
		return nil, apperrors.NewInsufficientHistoryError(
			fmt.Sprintf("user %s has %d interactions, need %d", userID, len(history), s.minInteractions))
	}

	ownVector := s.preferences.VectorFrom(userID, history)
	if ownVector.IsEmpty() {
		return nil, apperrors.NewInsufficientHistoryError(
			fmt.Sprintf("user %s has no category or tag signal", userID))
	}

	candidates, err := s.candidateUsers(ctx, userID, history)
	if err != nil {
		return nil, err
	}

	type scoredNeighbor struct {
		edge        entities.SimilarityEdge
		lastUpdated time.Time
	}

	neighbors := make([]scoredNeighbor, 0, len(candidates))
	for candidate := range candidates {
		candidateHistory, err := s.interactions.History(ctx, candidate, preferenceHistoryLimit)
		if err != nil {
			return nil, err
		}
		if len(candidateHistory) < s.minInteractions {
			continue
		}

		candidateVector := s.preferences.VectorFrom(candidate, candidateHistory)
		score, ok := Cosine(ownVector, candidateVector)
		if !ok || score < s.threshold {
			continue
		}

		neighbors = append(neighbors, scoredNeighbor{
			edge:        entities.SimilarityEdge{UserID: candidate, Score: score},
			lastUpdated: candidateVector.LastUpdated,
		})
	}

	// Equal scores break toward the neighbor with fresher signal.
	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].edge.Score != neighbors[j].edge.Score {
			return neighbors[i].edge.Score > neighbors[j].edge.Score
		}
		return neighbors[i].lastUpdated.After(neighbors[j].lastUpdated)
	})
	if len(neighbors) > s.neighborLimit {
		neighbors = neighbors[:s.neighborLimit]
	}

	edges := make([]entities.SimilarityEdge, len(neighbors))
	for i, n := range neighbors {
		edges[i] = n.edge
	}

	s.cacheNeighbors(ctx, userID, edges)
	return edges, nil
}

// candidateUsers collects every other user who touched a business from
// the subject's history.
func (s *SimilarityService) candidateUsers(ctx context.Context, userID string, history []*entities.Interaction) (map[string]struct{}, error) {
	candidates := make(map[string]struct{})
	seen := make(map[string]struct{})

	for _, interaction := range history {
		if interaction.BusinessID == "" {
			continue
		}
		if _, done := seen[interaction.BusinessID]; done {
			continue
		}
		seen[interaction.BusinessID] = struct{}{}

		others, err := s.interactions.UsersByBusiness(ctx, interaction.BusinessID)
		if err != nil {
			return nil, err
		}
		for _, other := range others {
			if other.UserID != userID {
				candidates[other.UserID] = struct{}{}
			}
		}
	}
	return candidates, nil
}

// Cache handling is best-effort on both sides; a cache outage never
// fails neighbor discovery.
func (s *SimilarityService) cachedNeighbors(ctx context.Context, userID string) ([]entities.SimilarityEdge, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, err := s.cache.Get(ctx, fmt.Sprintf(similarUsersKeyFmt, userID))
	if err != nil || data == nil {
		return nil, false
	}

	var edges []entities.SimilarityEdge
	if err := json.Unmarshal(data, &edges); err != nil {
		return nil, false
	}
	return edges, true
}

func (s *SimilarityService) cacheNeighbors(ctx context.Context, userID string, edges []entities.SimilarityEdge) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(edges)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(similarUsersKeyFmt, userID), data, s.cacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to cache neighbor list")
	}
}
