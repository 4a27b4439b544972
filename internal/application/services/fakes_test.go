package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
)

// fakeInteractionStore is an in-memory stand-in for the Redis-backed
// interaction log. Setting failWith makes every operation fail, which
// exercises the degraded scoring paths.
type fakeInteractionStore struct {
	mu       sync.Mutex
	byUser   map[string][]*entities.Interaction
	trends   map[string]float64
	failWith error
}

func newFakeInteractionStore() *fakeInteractionStore {
	return &fakeInteractionStore{
		byUser: make(map[string][]*entities.Interaction),
		trends: make(map[string]float64),
	}
}

func (f *fakeInteractionStore) Record(_ context.Context, interaction *entities.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.byUser[interaction.UserID] = append(f.byUser[interaction.UserID], interaction)
	return nil
}

func (f *fakeInteractionStore) History(_ context.Context, userID string, limit int) ([]*entities.Interaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	history := append([]*entities.Interaction(nil), f.byUser[userID]...)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (f *fakeInteractionStore) UsersByBusiness(_ context.Context, businessID string) ([]repositories.BusinessInteraction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	var interactions []repositories.BusinessInteraction
	for userID, history := range f.byUser {
		for _, interaction := range history {
			if interaction.BusinessID == businessID {
				interactions = append(interactions, repositories.BusinessInteraction{
					UserID:    userID,
					Rating:    interaction.ImplicitRating,
					Timestamp: interaction.Timestamp.Unix(),
				})
			}
		}
	}
	return interactions, nil
}

func (f *fakeInteractionStore) InteractionCount(_ context.Context, businessID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}

	var count int64
	for _, history := range f.byUser {
		for _, interaction := range history {
			if interaction.BusinessID == businessID {
				count++
			}
		}
	}
	return count, nil
}

func (f *fakeInteractionStore) IncrementTrend(_ context.Context, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.trends[query]++
	return nil
}

func (f *fakeInteractionStore) TopTrends(_ context.Context, limit int) ([]*entities.TrendCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}

	trends := make([]*entities.TrendCounter, 0, len(f.trends))
	for query, count := range f.trends {
		trends = append(trends, &entities.TrendCounter{Query: query, DecayedCount: count, LastSeen: time.Now()})
	}
	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].DecayedCount != trends[j].DecayedCount {
			return trends[i].DecayedCount > trends[j].DecayedCount
		}
		return trends[i].Query < trends[j].Query
	})
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}
	return trends, nil
}

// fakeBusinessRepo serves business metadata from a fixed map.
type fakeBusinessRepo struct {
	byID map[string]*entities.Business
}

func (f *fakeBusinessRepo) GetByID(_ context.Context, id string) (*entities.Business, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, nil
}

func (f *fakeBusinessRepo) GetByIDs(_ context.Context, ids []string) ([]*entities.Business, error) {
	var out []*entities.Business
	for _, id := range ids {
		if b, ok := f.byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBusinessRepo) List(_ context.Context, _ repositories.BusinessFilter) ([]*entities.Business, error) {
	var out []*entities.Business
	for _, b := range f.byID {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBusinessRepo) Upsert(_ context.Context, business *entities.Business) error {
	f.byID[business.ID] = business
	return nil
}

// fakeWeatherProvider returns a fixed weather so scoring tests are
// independent of the simulator.
type fakeWeatherProvider struct {
	weather *entities.Weather
	err     error
}

func (f *fakeWeatherProvider) CurrentWeather(_ context.Context, lat, lng float64, at time.Time) (*entities.Weather, error) {
	if f.err != nil {
		return nil, f.err
	}
	w := *f.weather
	w.Location = entities.Location{Latitude: lat, Longitude: lng}
	w.Timestamp = at
	return &w, nil
}

func pleasantSunnyWeather() *entities.Weather {
	return &entities.Weather{
		TemperatureCelsius:  22,
		Condition:           entities.ConditionSunny,
		Description:         "Sunny",
		PrecipitationChance: 5,
		ClimateZone:         entities.ZoneMediterranean,
		IsSimulated:         true,
	}
}

func interactionAt(userID, businessID, category string, tags []string, kind entities.InteractionKind, rating float64, at time.Time) *entities.Interaction {
	return &entities.Interaction{
		ID:             userID + ":" + businessID + ":" + at.Format(time.RFC3339Nano),
		UserID:         userID,
		BusinessID:     businessID,
		Category:       category,
		Tags:           tags,
		Kind:           kind,
		Timestamp:      at,
		ImplicitRating: rating,
	}
}
