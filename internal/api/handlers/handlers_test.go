package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nearspot/business-discovery/internal/api/handlers"
	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is a minimal in-memory interaction log for handler tests.
type memoryStore struct {
	mu     sync.Mutex
	byUser map[string][]*entities.Interaction
	trends map[string]float64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byUser: make(map[string][]*entities.Interaction),
		trends: make(map[string]float64),
	}
}

func (m *memoryStore) Record(_ context.Context, interaction *entities.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[interaction.UserID] = append(m.byUser[interaction.UserID], interaction)
	return nil
}

func (m *memoryStore) History(_ context.Context, userID string, limit int) ([]*entities.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append([]*entities.Interaction(nil), m.byUser[userID]...)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (m *memoryStore) UsersByBusiness(_ context.Context, businessID string) ([]repositories.BusinessInteraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repositories.BusinessInteraction
	for userID, history := range m.byUser {
		for _, interaction := range history {
			if interaction.BusinessID == businessID {
				out = append(out, repositories.BusinessInteraction{UserID: userID, Rating: interaction.ImplicitRating})
			}
		}
	}
	return out, nil
}

func (m *memoryStore) InteractionCount(_ context.Context, businessID string) (int64, error) {
	interactions, _ := m.UsersByBusiness(context.Background(), businessID)
	return int64(len(interactions)), nil
}

func (m *memoryStore) IncrementTrend(_ context.Context, query string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trends[query]++
	return nil
}

func (m *memoryStore) TopTrends(_ context.Context, limit int) ([]*entities.TrendCounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trends []*entities.TrendCounter
	for query, count := range m.trends {
		trends = append(trends, &entities.TrendCounter{Query: query, DecayedCount: count, LastSeen: time.Now()})
	}
	sort.SliceStable(trends, func(i, j int) bool { return trends[i].DecayedCount > trends[j].DecayedCount })
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}
	return trends, nil
}

func TestTrackInteraction_AcceptsAndAssignsIdentity(t *testing.T) {
	store := newMemoryStore()
	tracking := services.NewTrackingService(store, services.NewTrendingService(store), nil, nil, 8)
	handler := handlers.NewInteractionHandler(tracking)

	body, _ := json.Marshal(map[string]interface{}{
		"business_id": "b1",
		"kind":        "view",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/interactions", bytes.NewReader(body))
	req.Header.Set("User-Agent", "test-agent")
	req.RemoteAddr = "203.0.113.9:51234"
	rec := httptest.NewRecorder()

	handler.TrackInteraction(rec, req)
	tracking.Close()

	assert.Equal(t, http.StatusAccepted, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "accepted", response["status"])
	assert.NotEmpty(t, response["id"])
	assert.Len(t, response["user_id"], 16)

	history, err := store.History(context.Background(), response["user_id"], 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTrackInteraction_RejectsUnknownKind(t *testing.T) {
	store := newMemoryStore()
	tracking := services.NewTrackingService(store, services.NewTrendingService(store), nil, nil, 8)
	defer tracking.Close()
	handler := handlers.NewInteractionHandler(tracking)

	body, _ := json.Marshal(map[string]interface{}{
		"user_id":     "u1",
		"business_id": "b1",
		"kind":        "teleport",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/interactions", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.TrackInteraction(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrending_ReturnsTopQueries(t *testing.T) {
	store := newMemoryStore()
	trending := services.NewTrendingService(store)
	handler := handlers.NewTrendingHandler(trending)
	ctx := context.Background()

	require.NoError(t, trending.Record(ctx, "coffee"))
	require.NoError(t, trending.Record(ctx, "coffee"))
	require.NoError(t, trending.Record(ctx, "sushi"))

	req := httptest.NewRequest(http.MethodGet, "/api/trending?limit=5", nil)
	rec := httptest.NewRecorder()

	handler.GetTrending(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Trending []entities.TrendCounter `json:"trending"`
		Count    int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "coffee", response.Trending[0].Query)
}

func TestGetContext_RequiresCoordinates(t *testing.T) {
	handler := handlers.NewContextHandler(services.NewContextService(staticWeather()))

	req := httptest.NewRequest(http.MethodGet, "/api/context", nil)
	rec := httptest.NewRecorder()

	handler.GetContext(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetContext_ReturnsFactors(t *testing.T) {
	handler := handlers.NewContextHandler(services.NewContextService(staticWeather()))

	req := httptest.NewRequest(http.MethodGet, "/api/context?lat=40.4&lng=-3.7&at=2026-03-06T12:30:00Z", nil)
	rec := httptest.NewRecorder()

	handler.GetContext(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var factors entities.ContextualFactors
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &factors))
	assert.Equal(t, entities.BucketMidday, factors.TimeBucket)
	assert.True(t, factors.IsLunch)
	assert.NotNil(t, factors.Weather)
	assert.NotEmpty(t, factors.Summary)
}

type staticWeatherProvider struct{}

func (staticWeatherProvider) CurrentWeather(_ context.Context, lat, lng float64, at time.Time) (*entities.Weather, error) {
	return &entities.Weather{
		TemperatureCelsius:  22,
		Condition:           entities.ConditionSunny,
		Description:         "Sunny",
		PrecipitationChance: 5,
		Location:            entities.Location{Latitude: lat, Longitude: lng},
		Timestamp:           at,
		IsSimulated:         true,
	}, nil
}

func staticWeather() staticWeatherProvider {
	return staticWeatherProvider{}
}
