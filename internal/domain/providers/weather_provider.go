package providers

import (
	"context"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// WeatherProvider supplies the environmental context for a location and
// time. The default implementation is a deterministic simulator.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lng float64, at time.Time) (*entities.Weather, error)
}
