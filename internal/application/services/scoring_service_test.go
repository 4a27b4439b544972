package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/pkg/config"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecoConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		WideSearchThresholdKm:      10000,
		ConstrainedRelevanceWeight: 0.7,
		ConstrainedDistanceWeight:  0.3,
		WideRelevanceWeight:        0.4,
		WideDistanceWeight:         0.6,
		NeighborLimit:              10,
		MinInteractions:            3,
		SimilarityThreshold:        0.1,
		PreferenceHalfLifeDays:     21,
		TrendHalfLifeHours:         24,
		TrendPruneThreshold:        0.01,
		HistoryBoostMin:            0.8,
		HistoryBoostMax:            1.5,
		CollaborativeBoostMax:      1.5,
		ReasonThreshold:            1.1,
	}
}

func newScoringFixture(store *fakeInteractionStore, weather *fakeWeatherProvider) *services.ScoringService {
	cfg := testRecoConfig()
	preferences := services.NewPreferenceService(store, cfg.PreferenceHalfLifeDays)
	similarity := services.NewSimilarityService(store, preferences, nil,
		cfg.NeighborLimit, cfg.MinInteractions, cfg.SimilarityThreshold, time.Hour)
	collaborative := services.NewCollaborativeService(store, nil, similarity, cfg.CollaborativeBoostMax)
	contextSvc := services.NewContextService(weather)

	return services.NewScoringService(nil, contextSvc, preferences, similarity, collaborative, cfg, nil)
}

// Wednesday 09:00, sunny and 22°C.
var sunnyMorning = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func sunnyMorningRequest(candidates []entities.Candidate) services.ScoreRequest {
	return services.ScoreRequest{
		Query:      "somewhere to go",
		Location:   entities.Location{Latitude: 40.0, Longitude: -3.7},
		RadiusKm:   5,
		Candidates: candidates,
		At:         sunnyMorning,
	}
}

func TestScore_CoffeeWinsSunnyMorning(t *testing.T) {
	store := newFakeInteractionStore()
	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	candidates := []entities.Candidate{
		{BusinessID: "hw-1", Name: "Nuts & Bolts", Category: "hardware", BaseRelevance: 1, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
		{BusinessID: "cafe-1", Name: "Bean There", Category: "coffee", Tags: []string{"outdoor-seating"}, BaseRelevance: 1, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
	}

	response, err := svc.Score(context.Background(), sunnyMorningRequest(candidates))
	require.NoError(t, err)
	require.Len(t, response.Results, 2)

	top := response.Results[0]
	assert.Equal(t, "cafe-1", top.Candidate.BusinessID)
	assert.Less(t, top.FinalScore, response.Results[1].FinalScore)

	// Same base, so only the contextual boosts separate them.
	assert.Equal(t, top.BaseScore, response.Results[1].BaseScore)
	assert.Greater(t, top.Boosts.Time, 1.0)
	assert.Greater(t, top.Boosts.Weather, 1.0)
	assert.Equal(t, []string{"suits the current weather", "matches the time of day"}, top.Reasons)

	assert.Equal(t, services.RegimeConstrained, response.Regime)
	assert.False(t, response.Degraded)
	assert.Equal(t, entities.BucketMorning, response.Context.TimeBucket)
}

func TestScore_FinalScoreDividesByBoostProduct(t *testing.T) {
	store := newFakeInteractionStore()
	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	candidates := []entities.Candidate{
		{BusinessID: "cafe-1", Name: "Bean There", Category: "coffee", BaseRelevance: 1, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
	}

	response, err := svc.Score(context.Background(), sunnyMorningRequest(candidates))
	require.NoError(t, err)
	require.Len(t, response.Results, 1)

	result := response.Results[0]
	assert.InDelta(t, result.BaseScore/result.Boosts.Product(), result.FinalScore, 1e-9)
}

func TestScore_StoreOutageDegradesToNeutralBoosts(t *testing.T) {
	store := newFakeInteractionStore()
	store.failWith = apperrors.NewStoreUnavailableError("backend down", nil)

	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	candidates := []entities.Candidate{
		{BusinessID: "cafe-1", Name: "Bean There", Category: "coffee", BaseRelevance: 1, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
		{BusinessID: "hw-1", Name: "Nuts & Bolts", Category: "hardware", BaseRelevance: 2, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
	}

	req := sunnyMorningRequest(candidates)
	req.UserID = "alice"

	response, err := svc.Score(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, response.Degraded)
	require.Len(t, response.Results, 2)

	for _, result := range response.Results {
		assert.Equal(t, 1.0, result.Boosts.History)
		assert.Equal(t, 1.0, result.Boosts.Collaborative)
	}
}

func TestScore_RegimeSwitchAtWideThreshold(t *testing.T) {
	store := newFakeInteractionStore()
	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	candidates := []entities.Candidate{
		{BusinessID: "b1", Name: "Near", Category: "hardware", BaseRelevance: 1, DistanceKm: 2, Location: entities.Location{Latitude: 40.01, Longitude: -3.7}},
		{BusinessID: "b2", Name: "Far", Category: "hardware", BaseRelevance: 1, DistanceKm: 400, Location: entities.Location{Latitude: 43.5, Longitude: -3.7}},
	}

	constrained := sunnyMorningRequest(candidates)
	response, err := svc.Score(context.Background(), constrained)
	require.NoError(t, err)
	assert.Equal(t, services.RegimeConstrained, response.Regime)

	wide := sunnyMorningRequest(candidates)
	wide.RadiusKm = 10000
	response, err = svc.Score(context.Background(), wide)
	require.NoError(t, err)
	assert.Equal(t, services.RegimeWide, response.Regime)

	// In the wide regime the nearest candidate still wins, with its
	// distance normalized within the set rather than over the radius.
	assert.Equal(t, "b1", response.Results[0].Candidate.BusinessID)
}

func TestScore_TiedScoresFavorPopularBusiness(t *testing.T) {
	store := newFakeInteractionStore()
	for _, userID := range []string{"u1", "u2", "u3"} {
		require.NoError(t, store.Record(context.Background(),
			interactionAt(userID, "zz-popular", "hardware", nil, entities.InteractionView, 1.0, sunnyMorning.Add(-time.Hour))))
	}

	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	// Identical in every scoring input, so the final scores tie exactly
	// and only popularity separates them.
	candidates := []entities.Candidate{
		{BusinessID: "aa-unpopular", Name: "Alpha Tools", Category: "hardware", BaseRelevance: 1, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
		{BusinessID: "zz-popular", Name: "Omega Tools", Category: "hardware", BaseRelevance: 1, Location: entities.Location{Latitude: 40.0, Longitude: -3.7}},
	}

	response, err := svc.Score(context.Background(), sunnyMorningRequest(candidates))
	require.NoError(t, err)
	require.Len(t, response.Results, 2)

	assert.Equal(t, response.Results[0].FinalScore, response.Results[1].FinalScore)
	assert.Equal(t, "zz-popular", response.Results[0].Candidate.BusinessID)
}

func TestScore_InvalidCoordinatesRejected(t *testing.T) {
	store := newFakeInteractionStore()
	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	req := sunnyMorningRequest(nil)
	req.Location = entities.Location{Latitude: 95, Longitude: 0}

	_, err := svc.Score(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidCoordinate))
}

func TestScore_EmptyCandidateListIsNotAnError(t *testing.T) {
	store := newFakeInteractionStore()
	svc := newScoringFixture(store, &fakeWeatherProvider{weather: pleasantSunnyWeather()})

	response, err := svc.Score(context.Background(), sunnyMorningRequest(nil))
	require.NoError(t, err)
	assert.Empty(t, response.Results)
	assert.NotNil(t, response.Context)
}
