package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nearspot/business-discovery/internal/application/services"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	apperrors "github.com/nearspot/business-discovery/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentContext_LunchOnPleasantDay(t *testing.T) {
	svc := services.NewContextService(&fakeWeatherProvider{weather: pleasantSunnyWeather()})

	// Friday 12:30.
	at := time.Date(2026, 3, 6, 12, 30, 0, 0, time.UTC)
	factors, err := svc.Current(context.Background(), 40.4168, -3.7038, at)
	require.NoError(t, err)

	assert.Equal(t, entities.BucketMidday, factors.TimeBucket)
	assert.True(t, factors.IsLunch)
	assert.False(t, factors.IsWeekend)
	require.NotNil(t, factors.Weather)
	assert.Contains(t, factors.TimeBoosts, "lunch")
	assert.Contains(t, factors.WeatherBoosts, "outdoor")
	assert.Contains(t, factors.Summary, "Friday")
	assert.Contains(t, factors.Summary, "lunch")
}

func TestCurrentContext_WeatherFailureDegrades(t *testing.T) {
	svc := services.NewContextService(&fakeWeatherProvider{err: errors.New("simulator offline")})

	at := time.Date(2026, 3, 6, 12, 30, 0, 0, time.UTC)
	factors, err := svc.Current(context.Background(), 40.4168, -3.7038, at)
	require.NoError(t, err)

	assert.Nil(t, factors.Weather)
	assert.Empty(t, factors.WeatherBoosts)
	assert.NotEmpty(t, factors.TimeBoosts)
}

func TestCurrentContext_RejectsInvalidCoordinates(t *testing.T) {
	svc := services.NewContextService(&fakeWeatherProvider{weather: pleasantSunnyWeather()})

	_, err := svc.Current(context.Background(), 120, 0, time.Time{})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidCoordinate))
}

func TestCurrentContext_ZeroTimeUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC) // Saturday evening
	svc := services.NewContextService(&fakeWeatherProvider{weather: pleasantSunnyWeather()}).
		WithClock(func() time.Time { return now })

	factors, err := svc.Current(context.Background(), 40.4168, -3.7038, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, entities.BucketEvening, factors.TimeBucket)
	assert.True(t, factors.IsWeekend)
	assert.Equal(t, now, factors.GeneratedAt)
}
