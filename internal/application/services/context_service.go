package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nearspot/business-discovery/internal/adapters/providers/weather"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
	"github.com/nearspot/business-discovery/internal/infrastructure/observability"
	"github.com/nearspot/business-discovery/pkg/geo"
)

// ContextService assembles the situational context for a location and
// time: time bucket, weekend flag, simulated weather, and the derived
// boost tables. Context is computed fresh per request and never stored
// between requests.
type ContextService struct {
	weatherProvider providers.WeatherProvider
	clock           func() time.Time
}

// NewContextService creates a new context service
func NewContextService(weatherProvider providers.WeatherProvider) *ContextService {
	return &ContextService{
		weatherProvider: weatherProvider,
		clock:           time.Now,
	}
}

// WithClock overrides the service clock; used by tests.
func (s *ContextService) WithClock(clock func() time.Time) *ContextService {
	s.clock = clock
	return s
}

// Current builds the contextual factors for a location. A zero `at`
// means now. Weather failure degrades to a context without weather
// boosts instead of failing the request.
func (s *ContextService) Current(ctx context.Context, lat, lng float64, at time.Time) (*entities.ContextualFactors, error) {
	if err := geo.Validate(lat, lng); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.clock()
	}

	bucket, isLunch := BucketFor(at)
	isWeekend := IsWeekend(at)

	factors := &entities.ContextualFactors{
		TimeBucket:    bucket,
		IsLunch:       isLunch,
		IsWeekend:     isWeekend,
		TimeBoosts:    timeBoostsFor(bucket, isLunch, isWeekend),
		WeatherBoosts: map[string]float64{},
		GeneratedAt:   at,
	}

	w, err := s.weatherProvider.CurrentWeather(ctx, lat, lng, at)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("weather unavailable, scoring without weather boosts")
	} else {
		factors.Weather = w
		factors.WeatherBoosts = weather.BoostsFor(w)
	}

	factors.Summary = summarize(at, factors)
	return factors, nil
}

// summarize renders a short human-readable line for UI surfaces.
func summarize(at time.Time, f *entities.ContextualFactors) string {
	line := fmt.Sprintf("It's %s, %s.", at.Weekday(), at.Format("3:04 PM"))

	if f.Weather != nil {
		line += fmt.Sprintf(" Weather is %s at %.0f°C", f.Weather.Description, f.Weather.TemperatureCelsius)
		switch {
		case f.IsLunch && f.Weather.IsPleasant():
			line += " (perfect for lunch outside)"
		case f.IsLunch:
			line += " (perfect for lunch)"
		case f.Weather.IsPleasant():
			line += " (great for being outdoors)"
		case f.Weather.IsRainy():
			line += " (a good day to stay indoors)"
		}
		line += "."
	}

	return line
}
