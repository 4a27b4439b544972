package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimilarityFixture(store *fakeInteractionStore) *services.SimilarityService {
	preferences := services.NewPreferenceService(store, 21)
	return services.NewSimilarityService(store, preferences, nil, 10, 3, 0.1, time.Hour)
}

func seedUser(t *testing.T, store *fakeInteractionStore, userID string, categories []string, base time.Time) {
	t.Helper()
	for i, category := range categories {
		businessID := category + "-biz"
		err := store.Record(context.Background(),
			interactionAt(userID, businessID, category, nil, entities.InteractionClick, 3.0, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
}

func TestCosine_IdenticalVectorsScoreOne(t *testing.T) {
	a := &entities.PreferenceVector{
		UserID:          "a",
		CategoryWeights: map[string]float64{"coffee": 2, "bakery": 1},
	}
	b := &entities.PreferenceVector{
		UserID:          "b",
		CategoryWeights: map[string]float64{"coffee": 4, "bakery": 2},
	}

	score, ok := services.Cosine(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCosine_DisjointVectorsScoreZero(t *testing.T) {
	a := &entities.PreferenceVector{CategoryWeights: map[string]float64{"coffee": 2}}
	b := &entities.PreferenceVector{CategoryWeights: map[string]float64{"hardware": 2}}

	score, ok := services.Cosine(a, b)
	require.True(t, ok)
	assert.Equal(t, 0.0, score)
}

func TestCosine_EmptyVectorUndefined(t *testing.T) {
	a := &entities.PreferenceVector{CategoryWeights: map[string]float64{"coffee": 2}}
	empty := &entities.PreferenceVector{}

	_, ok := services.Cosine(a, empty)
	assert.False(t, ok)
	_, ok = services.Cosine(empty, a)
	assert.False(t, ok)
	_, ok = services.Cosine(nil, a)
	assert.False(t, ok)
}

func TestNeighbors_RequiresMinimumHistory(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	seedUser(t, store, "thin", []string{"coffee", "bakery"}, base)

	svc := newSimilarityFixture(store)

	_, err := svc.Neighbors(context.Background(), "thin")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInsufficientHistory))
}

func TestNeighbors_FindsUsersWithSharedTaste(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "bob", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "carol", []string{"hardware", "plumbing", "paint"}, base)

	svc := newSimilarityFixture(store)

	neighbors, err := svc.Neighbors(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "bob", neighbors[0].UserID)
	assert.InDelta(t, 1.0, neighbors[0].Score, 1e-9)
}

func TestNeighbors_DisjointUsersNeverMeet(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "dave", []string{"hardware", "plumbing", "paint"}, base)

	svc := newSimilarityFixture(store)

	neighbors, err := svc.Neighbors(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}
