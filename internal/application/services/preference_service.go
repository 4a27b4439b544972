package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
)

const (
	preferenceHistoryLimit = 100
	preferenceCacheSize    = 1024
	preferenceCacheTTL     = time.Minute
)

// PreferenceService derives sparse preference vectors from the raw
// interaction log. Vectors are recomputed on demand; the log stays the
// single source of truth. A short in-process cache absorbs the repeated
// lookups a single scoring pass makes for the same user.
type PreferenceService struct {
	interactions repositories.InteractionRepository
	halfLifeDays float64
	clock        func() time.Time
	cache        *expirable.LRU[string, *entities.PreferenceVector]
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(interactions repositories.InteractionRepository, halfLifeDays float64) *PreferenceService {
	return &PreferenceService{
		interactions: interactions,
		halfLifeDays: halfLifeDays,
		clock:        time.Now,
		cache:        expirable.NewLRU[string, *entities.PreferenceVector](preferenceCacheSize, nil, preferenceCacheTTL),
	}
}

// WithClock overrides the service clock; used by tests. It also drops
// any cached vectors computed under the previous clock.
func (s *PreferenceService) WithClock(clock func() time.Time) *PreferenceService {
	s.clock = clock
	s.cache.Purge()
	return s
}

// Vector loads a user's recent history and aggregates it. A user with
// no history gets an empty vector, not an error.
func (s *PreferenceService) Vector(ctx context.Context, userID string) (*entities.PreferenceVector, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	history, err := s.interactions.History(ctx, userID, preferenceHistoryLimit)
	if err != nil {
		return nil, err
	}

	vector := s.VectorFrom(userID, history)
	s.cache.Add(userID, vector)
	return vector, nil
}

// VectorFrom aggregates an already-loaded history into a preference
// vector. Each interaction contributes its implicit rating scaled by
// exponential time decay, so older signals fade but never invert.
func (s *PreferenceService) VectorFrom(userID string, history []*entities.Interaction) *entities.PreferenceVector {
	vector := &entities.PreferenceVector{
		UserID:          userID,
		CategoryWeights: make(map[string]float64),
		TagWeights:      make(map[string]float64),
	}

	now := s.clock()
	for _, interaction := range history {
		weight := interaction.ImplicitRating * s.decayFactor(now, interaction.Timestamp)
		if weight <= 0 {
			continue
		}

		if category := strings.ToLower(strings.TrimSpace(interaction.Category)); category != "" {
			vector.CategoryWeights[category] += weight
		}
		for _, tag := range interaction.Tags {
			if t := strings.ToLower(strings.TrimSpace(tag)); t != "" {
				vector.TagWeights[t] += weight
			}
		}

		if interaction.Timestamp.After(vector.LastUpdated) {
			vector.LastUpdated = interaction.Timestamp
		}
	}

	return vector
}

func (s *PreferenceService) decayFactor(now, at time.Time) float64 {
	ageDays := now.Sub(at).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-math.Ln2 * ageDays / s.halfLifeDays)
}
