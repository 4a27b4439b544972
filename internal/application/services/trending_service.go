package services

import (
	"context"
	"strings"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
)

const analyticsSampleSize = 100

// TrendingAnalytics is a coarse snapshot of search activity.
type TrendingAnalytics struct {
	TotalDecayedCount float64                  `json:"total_decayed_count"`
	UniqueTerms       int                      `json:"unique_terms"`
	TopTrends         []*entities.TrendCounter `json:"top_trends"`
}

// TrendingService maintains time-decayed popularity counters over
// normalized search queries.
type TrendingService struct {
	interactions repositories.InteractionRepository
}

// NewTrendingService creates a new trending service
func NewTrendingService(interactions repositories.InteractionRepository) *TrendingService {
	return &TrendingService{interactions: interactions}
}

// NormalizeQuery lowercases, trims, and collapses internal whitespace
// so count aggregation is case and spacing insensitive.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Record bumps the decayed counter for a query. Blank queries are
// ignored. Retried deliveries double-count; trends tolerate that.
func (s *TrendingService) Record(ctx context.Context, query string) error {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil
	}
	return s.interactions.IncrementTrend(ctx, normalized)
}

// Top returns the current strongest trends, descending.
func (s *TrendingService) Top(ctx context.Context, limit int) ([]*entities.TrendCounter, error) {
	return s.interactions.TopTrends(ctx, limit)
}

// PeopleAlsoSearched suggests trending queries adjacent to the given
// one, excluding the query itself.
func (s *TrendingService) PeopleAlsoSearched(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	trends, err := s.interactions.TopTrends(ctx, limit+1)
	if err != nil {
		return nil, err
	}

	normalized := NormalizeQuery(query)
	suggestions := make([]string, 0, limit)
	for _, trend := range trends {
		if trend.Query == normalized {
			continue
		}
		suggestions = append(suggestions, trend.Query)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

// Analytics summarizes tracked search activity from the top counters.
func (s *TrendingService) Analytics(ctx context.Context) (*TrendingAnalytics, error) {
	trends, err := s.interactions.TopTrends(ctx, analyticsSampleSize)
	if err != nil {
		return nil, err
	}

	snapshot := &TrendingAnalytics{
		UniqueTerms: len(trends),
		TopTrends:   trends,
	}
	for _, trend := range trends {
		snapshot.TotalDecayedCount += trend.DecayedCount
	}
	if len(snapshot.TopTrends) > 10 {
		snapshot.TopTrends = snapshot.TopTrends[:10]
	}
	return snapshot, nil
}
