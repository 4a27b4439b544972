package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollaborativeFixture(store *fakeInteractionStore) *services.CollaborativeService {
	similarity := newSimilarityFixture(store)
	return services.NewCollaborativeService(store, nil, similarity, 1.5)
}

func TestRecommend_SuggestsUnseenNeighborFavorites(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "bob", []string{"coffee", "bakery", "brunch"}, base)

	// Bob also loves a place Alice has never seen.
	require.NoError(t, store.Record(ctx,
		interactionAt("bob", "hidden-gem", "coffee", nil, entities.InteractionBookmark, 5.0, base.Add(time.Hour))))

	svc := newCollaborativeFixture(store)

	recommendations, err := svc.Recommend(ctx, "alice", nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	assert.Equal(t, "hidden-gem", recommendations[0].BusinessID)
	assert.InDelta(t, 5.0, recommendations[0].Score, 1e-9)
}

func TestRecommend_OwnHistoryNeverResurfaces(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// Bob rated every business Alice already knows, plus one new spot.
	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "bob", []string{"coffee", "bakery", "brunch"}, base)
	require.NoError(t, store.Record(ctx,
		interactionAt("bob", "hidden-gem", "coffee", nil, entities.InteractionBookmark, 5.0, base.Add(time.Hour))))

	svc := newCollaborativeFixture(store)

	recommendations, err := svc.Recommend(ctx, "alice", nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	for _, visited := range []string{"coffee-biz", "bakery-biz", "brunch-biz"} {
		assert.NotEqual(t, visited, recommendations[0].BusinessID)
	}
	assert.Equal(t, "hidden-gem", recommendations[0].BusinessID)
}

func TestRecommend_HonorsExcludeSet(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "bob", []string{"coffee", "bakery", "brunch"}, base)
	require.NoError(t, store.Record(ctx,
		interactionAt("bob", "hidden-gem", "coffee", nil, entities.InteractionBookmark, 5.0, base.Add(time.Hour))))

	svc := newCollaborativeFixture(store)

	recommendations, err := svc.Recommend(ctx, "alice", nil, map[string]struct{}{"hidden-gem": {}}, 10)
	require.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestRecommend_ThinHistoryYieldsEmptyList(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	seedUser(t, store, "newbie", []string{"coffee"}, base)

	svc := newCollaborativeFixture(store)

	recommendations, err := svc.Recommend(context.Background(), "newbie", nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestRecommend_DisjointUsersGetNothing(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "dave", []string{"hardware", "plumbing", "paint"}, base)

	svc := newCollaborativeFixture(store)

	recommendations, err := svc.Recommend(context.Background(), "alice", nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestRecommend_AnnotatesDistanceFromOrigin(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "bob", []string{"coffee", "bakery", "brunch"}, base)
	require.NoError(t, store.Record(ctx,
		interactionAt("bob", "hidden-gem", "coffee", nil, entities.InteractionBookmark, 5.0, base.Add(time.Hour))))

	businesses := &fakeBusinessRepo{byID: map[string]*entities.Business{
		"hidden-gem": {
			ID:       "hidden-gem",
			Name:     "Hidden Gem",
			Category: "coffee",
			// One degree of latitude north of the origin.
			Location: entities.Location{Latitude: 41.0, Longitude: -3.7},
		},
	}}
	similarity := newSimilarityFixture(store)
	svc := services.NewCollaborativeService(store, businesses, similarity, 1.5)

	origin := &entities.Location{Latitude: 40.0, Longitude: -3.7}
	recommendations, err := svc.Recommend(ctx, "alice", origin, nil, 10)
	require.NoError(t, err)
	require.Len(t, recommendations, 1)
	assert.Equal(t, "Hidden Gem", recommendations[0].Name)
	assert.InDelta(t, 111.2, recommendations[0].DistanceKm, 1.0)
}

func TestBoostFor_BoundsAndNeutrality(t *testing.T) {
	store := newFakeInteractionStore()
	base := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seedUser(t, store, "alice", []string{"coffee", "bakery", "brunch"}, base)
	seedUser(t, store, "bob", []string{"coffee", "bakery", "brunch"}, base)
	require.NoError(t, store.Record(ctx,
		interactionAt("bob", "hidden-gem", "coffee", nil, entities.InteractionBookmark, 5.0, base.Add(time.Hour))))

	svc := newCollaborativeFixture(store)
	similarity := newSimilarityFixture(store)

	neighbors, err := similarity.Neighbors(ctx, "alice")
	require.NoError(t, err)

	boost := svc.BoostFor(ctx, neighbors, "hidden-gem")
	assert.Greater(t, boost, 1.0)
	assert.LessOrEqual(t, boost, 1.5)

	// A business no neighbor rated stays neutral.
	assert.Equal(t, 1.0, svc.BoostFor(ctx, neighbors, "unrated-biz"))

	// No neighbors at all stays neutral.
	assert.Equal(t, 1.0, svc.BoostFor(ctx, nil, "hidden-gem"))
}
