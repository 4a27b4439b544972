package services

import (
	"context"
	"sort"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/nearspot/business-discovery/pkg/geo"
)

const defaultRecommendationLimit = 10

// CollaborativeService produces user-based collaborative
// recommendations and per-business boosts from neighbor ratings.
type CollaborativeService struct {
	interactions repositories.InteractionRepository
	businesses   repositories.BusinessRepository
	similarity   *SimilarityService
	boostMax     float64
}

// NewCollaborativeService creates a new collaborative filtering service
func NewCollaborativeService(
	interactions repositories.InteractionRepository,
	businesses repositories.BusinessRepository,
	similarity *SimilarityService,
	boostMax float64,
) *CollaborativeService {
	return &CollaborativeService{
		interactions: interactions,
		businesses:   businesses,
		similarity:   similarity,
		boostMax:     boostMax,
	}
}

// Recommend returns up to limit businesses the user has not seen,
// ranked by similarity-weighted neighbor ratings. A user below the
// minimum interaction count gets an empty list, never an error. When
// an origin is supplied, enriched recommendations carry the distance
// to it.
func (s *CollaborativeService) Recommend(ctx context.Context, userID string, origin *entities.Location, exclude map[string]struct{}, limit int) ([]entities.Recommendation, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	neighbors, err := s.similarity.Neighbors(ctx, userID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeInsufficientHistory) {
			return nil, nil
		}
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	seen, err := s.seenBusinesses(ctx, userID)
	if err != nil {
		return nil, err
	}
	for id := range exclude {
		seen[id] = struct{}{}
	}

	weightedSums := make(map[string]float64)
	weightTotals := make(map[string]float64)

	for _, neighbor := range neighbors {
		history, err := s.interactions.History(ctx, neighbor.UserID, preferenceHistoryLimit)
		if err != nil {
			return nil, err
		}

		// A neighbor contributes one weight per business regardless of
		// how many times they touched it; the strongest rating wins.
		bestRatings := make(map[string]float64)
		for _, interaction := range history {
			if interaction.BusinessID == "" {
				continue
			}
			if _, skip := seen[interaction.BusinessID]; skip {
				continue
			}
			if interaction.ImplicitRating > bestRatings[interaction.BusinessID] {
				bestRatings[interaction.BusinessID] = interaction.ImplicitRating
			}
		}

		for businessID, rating := range bestRatings {
			weightedSums[businessID] += neighbor.Score * rating
			weightTotals[businessID] += neighbor.Score
		}
	}

	recommendations := make([]entities.Recommendation, 0, len(weightedSums))
	for businessID, sum := range weightedSums {
		total := weightTotals[businessID]
		if total <= 0 {
			continue
		}
		score := sum / total
		if score <= 0 {
			continue
		}
		recommendations = append(recommendations, entities.Recommendation{
			BusinessID: businessID,
			Score:      score,
			Reasons:    []string{"popular with similar users"},
		})
	}

	if err := s.rankRecommendations(ctx, recommendations); err != nil {
		return nil, err
	}
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	s.enrich(ctx, origin, recommendations)
	return recommendations, nil
}

// BoostFor predicts the collaborative multiplier for one candidate
// business. Any failure along the way collapses to neutral 1.0; the
// boost is an enhancement, never a gate.
func (s *CollaborativeService) BoostFor(ctx context.Context, neighbors []entities.SimilarityEdge, businessID string) float64 {
	if len(neighbors) == 0 || businessID == "" {
		return 1.0
	}

	raters, err := s.interactions.UsersByBusiness(ctx, businessID)
	if err != nil {
		return 1.0
	}

	ratingsByUser := make(map[string]float64, len(raters))
	for _, r := range raters {
		if r.Rating > ratingsByUser[r.UserID] {
			ratingsByUser[r.UserID] = r.Rating
		}
	}

	var weightedSum, weightTotal float64
	for _, neighbor := range neighbors {
		if rating, ok := ratingsByUser[neighbor.UserID]; ok {
			weightedSum += neighbor.Score * rating
			weightTotal += neighbor.Score
		}
	}
	if weightTotal <= 0 {
		return 1.0
	}

	predicted := weightedSum / weightTotal
	strength := predicted / 5.0
	if strength > 1.0 {
		strength = 1.0
	}

	boost := 1.0 + strength*(s.boostMax-1.0)
	if boost > s.boostMax {
		boost = s.boostMax
	}
	return boost
}

// seenBusinesses collects the ids of businesses the user has already
// interacted with; those never resurface as recommendations.
func (s *CollaborativeService) seenBusinesses(ctx context.Context, userID string) (map[string]struct{}, error) {
	history, err := s.interactions.History(ctx, userID, preferenceHistoryLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(history))
	for _, interaction := range history {
		if interaction.BusinessID != "" {
			seen[interaction.BusinessID] = struct{}{}
		}
	}
	return seen, nil
}

// Popularity returns the global interaction count for a business,
// treating lookup failures as zero.
func (s *CollaborativeService) Popularity(ctx context.Context, businessID string) int64 {
	count, err := s.interactions.InteractionCount(ctx, businessID)
	if err != nil {
		return 0
	}
	return count
}

// rankRecommendations orders by predicted score, breaking ties by
// global popularity and then business ID so output is deterministic.
func (s *CollaborativeService) rankRecommendations(ctx context.Context, recommendations []entities.Recommendation) error {
	popularity := make(map[string]int64, len(recommendations))
	for _, rec := range recommendations {
		count, err := s.interactions.InteractionCount(ctx, rec.BusinessID)
		if err != nil {
			return err
		}
		popularity[rec.BusinessID] = count
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		if recommendations[i].Score != recommendations[j].Score {
			return recommendations[i].Score > recommendations[j].Score
		}
		if popularity[recommendations[i].BusinessID] != popularity[recommendations[j].BusinessID] {
			return popularity[recommendations[i].BusinessID] > popularity[recommendations[j].BusinessID]
		}
		return recommendations[i].BusinessID < recommendations[j].BusinessID
	})
	return nil
}

// enrich fills names and categories from the metadata store, plus the
// distance from origin when one was supplied. Lookup failures leave
// recommendations bare rather than dropping them.
func (s *CollaborativeService) enrich(ctx context.Context, origin *entities.Location, recommendations []entities.Recommendation) {
	if s.businesses == nil || len(recommendations) == 0 {
		return
	}

	ids := make([]string, len(recommendations))
	for i, rec := range recommendations {
		ids[i] = rec.BusinessID
	}

	businesses, err := s.businesses.GetByIDs(ctx, ids)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to enrich recommendations with metadata")
		return
	}

	byID := make(map[string]*entities.Business, len(businesses))
	for _, b := range businesses {
		byID[b.ID] = b
	}
	for i := range recommendations {
		if b, ok := byID[recommendations[i].BusinessID]; ok {
			recommendations[i].Name = b.Name
			recommendations[i].Category = b.Category
			recommendations[i].Tags = b.Tags
			if origin != nil {
				recommendations[i].DistanceKm = geo.Distance(
					origin.Latitude, origin.Longitude,
					b.Location.Latitude, b.Location.Longitude,
				)
			}
		}
	}
}
