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

func TestAnonymousUserID_StableAndShort(t *testing.T) {
	a := services.AnonymousUserID("Mozilla/5.0", "203.0.113.9")
	b := services.AnonymousUserID("Mozilla/5.0", "203.0.113.9")
	c := services.AnonymousUserID("Mozilla/5.0", "203.0.113.10")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestTrack_RejectsMalformedInteractions(t *testing.T) {
	store := newFakeInteractionStore()
	svc := services.NewTrackingService(store, services.NewTrendingService(store), nil, nil, 8)
	defer svc.Close()
	ctx := context.Background()

	err := svc.Track(ctx, &entities.Interaction{Kind: entities.InteractionView, BusinessID: "b1"}, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedInteraction))

	err = svc.Track(ctx, &entities.Interaction{UserID: "u1", Kind: entities.InteractionView}, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedInteraction))

	err = svc.Track(ctx, &entities.Interaction{UserID: "u1", Kind: entities.InteractionSearch}, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedInteraction))

	err = svc.Track(ctx, &entities.Interaction{UserID: "u1", BusinessID: "b1", Kind: "teleport"}, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedInteraction))
}

func TestTrack_PersistsInBackground(t *testing.T) {
	store := newFakeInteractionStore()
	svc := services.NewTrackingService(store, services.NewTrendingService(store), nil, nil, 8)
	ctx := context.Background()

	require.NoError(t, svc.Track(ctx, &entities.Interaction{
		UserID:     "u1",
		BusinessID: "b1",
		Category:   "coffee",
		Kind:       entities.InteractionClick,
	}, 45))
	require.NoError(t, svc.Track(ctx, &entities.Interaction{
		UserID: "u1",
		Kind:   entities.InteractionSearch,
		Query:  "Coffee Near Me",
	}, 0))

	// Close drains the queue, so everything is persisted afterwards.
	svc.Close()

	history, err := store.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	for _, interaction := range history {
		assert.NotEmpty(t, interaction.ID)
		assert.False(t, interaction.Timestamp.IsZero())
	}

	trends, err := store.TopTrends(ctx, 10)
	require.NoError(t, err)
	require.Len(t, trends, 1)
	assert.Equal(t, "coffee near me", trends[0].Query)
}

func TestTrack_DwellTimeRaisesImplicitRating(t *testing.T) {
	store := newFakeInteractionStore()
	svc := services.NewTrackingService(store, services.NewTrendingService(store), nil, nil, 8)
	ctx := context.Background()

	require.NoError(t, svc.Track(ctx, &entities.Interaction{
		UserID: "u1", BusinessID: "quick", Kind: entities.InteractionView,
	}, 5))
	require.NoError(t, svc.Track(ctx, &entities.Interaction{
		UserID: "u1", BusinessID: "lingered", Kind: entities.InteractionView,
	}, 200))

	svc.Close()

	history, err := store.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	ratings := map[string]float64{}
	for _, interaction := range history {
		ratings[interaction.BusinessID] = interaction.ImplicitRating
	}
	assert.Equal(t, 2.0, ratings["quick"])
	assert.Equal(t, 3.5, ratings["lingered"])
}

func TestTrack_SurvivesStoreOutage(t *testing.T) {
	store := newFakeInteractionStore()
	store.failWith = apperrors.NewStoreUnavailableError("backend down", nil)

	svc := services.NewTrackingService(store, services.NewTrendingService(store), nil, nil, 8)
	defer svc.Close()

	err := svc.Track(context.Background(), &entities.Interaction{
		UserID: "u1", BusinessID: "b1", Kind: entities.InteractionView, Timestamp: time.Now(),
	}, 0)
	assert.NoError(t, err)
}
