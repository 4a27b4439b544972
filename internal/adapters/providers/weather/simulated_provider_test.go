package weather

import (
	"context"
	"testing"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWeather_Deterministic(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 7, 15, 14, 0, 0, 0, time.UTC)

	first := NewSimulatedProvider(15 * time.Minute)
	second := NewSimulatedProvider(15 * time.Minute)

	a, err := first.CurrentWeather(ctx, 40.4168, -3.7038, at)
	require.NoError(t, err)
	b, err := second.CurrentWeather(ctx, 40.4168, -3.7038, at)
	require.NoError(t, err)

	// Two independent providers agree: no shared state, no randomness.
	assert.Equal(t, a, b)
}

func TestCurrentWeather_VariesByLocation(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 7, 15, 14, 0, 0, 0, time.UTC)
	provider := NewSimulatedProvider(15 * time.Minute)

	madrid, err := provider.CurrentWeather(ctx, 40.4168, -3.7038, at)
	require.NoError(t, err)
	singapore, err := provider.CurrentWeather(ctx, 1.3521, 103.8198, at)
	require.NoError(t, err)

	assert.Equal(t, entities.ZoneMediterranean, madrid.ClimateZone)
	assert.Equal(t, entities.ZoneTropical, singapore.ClimateZone)
	assert.NotEqual(t, madrid.TemperatureCelsius, singapore.TemperatureCelsius)
}

func TestClimateZoneFor_Bands(t *testing.T) {
	tests := []struct {
		lat  float64
		zone entities.ClimateZone
	}{
		{0, entities.ZoneTropical},
		{-10, entities.ZoneTropical},
		{23.4, entities.ZoneTropical},
		{30, entities.ZoneArid},
		{-30, entities.ZoneArid},
		{40, entities.ZoneMediterranean},
		{50, entities.ZoneContinental},
		{-55, entities.ZoneContinental},
		{70, entities.ZonePolar},
		{-89, entities.ZonePolar},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.zone, ClimateZoneFor(tt.lat), "lat %v", tt.lat)
	}
}

func TestBoostsFor_NeverBelowNeutral(t *testing.T) {
	states := []*entities.Weather{
		{TemperatureCelsius: 30, Condition: entities.ConditionSunny},
		{TemperatureCelsius: 5, Condition: entities.ConditionCloudy},
		{TemperatureCelsius: 18, Condition: entities.ConditionRain, PrecipitationChance: 80},
		{TemperatureCelsius: 22, Condition: entities.ConditionSunny, PrecipitationChance: 5},
		{TemperatureCelsius: -3, Condition: entities.ConditionSnow},
		{TemperatureCelsius: 12, Condition: entities.ConditionFog},
	}

	for _, w := range states {
		for keyword, boost := range BoostsFor(w) {
			assert.GreaterOrEqual(t, boost, 1.0, "condition %s keyword %s", w.Condition, keyword)
			assert.LessOrEqual(t, boost, 1.5, "condition %s keyword %s", w.Condition, keyword)
		}
	}
}

func TestBoostsFor_PleasantWeatherFavorsOutdoor(t *testing.T) {
	boosts := BoostsFor(&entities.Weather{
		TemperatureCelsius:  22,
		Condition:           entities.ConditionSunny,
		PrecipitationChance: 5,
	})
	assert.Contains(t, boosts, "outdoor")
	assert.Contains(t, boosts, "park")
}

func TestCurrentWeather_SeasonalContrast(t *testing.T) {
	ctx := context.Background()
	provider := NewSimulatedProvider(15 * time.Minute)

	summer, err := provider.CurrentWeather(ctx, 52.52, 13.405, time.Date(2026, 7, 15, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	winter, err := provider.CurrentWeather(ctx, 52.52, 13.405, time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Jitter is at most ±3°C; a continental seasonal swing dwarfs it.
	assert.Greater(t, summer.TemperatureCelsius, winter.TemperatureCelsius)
}
