package weather

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nearspot/business-discovery/internal/domain/entities"
	"github.com/nearspot/business-discovery/internal/domain/providers"
)

// zonePattern parameterizes the simulator per climate zone.
type zonePattern struct {
	baseTemp          float64
	seasonalAmplitude float64
	diurnalAmplitude  float64
	baseHumidity      float64
	baseRainChance    float64
}

var zonePatterns = map[entities.ClimateZone]zonePattern{
	entities.ZoneTropical:      {baseTemp: 28, seasonalAmplitude: 3, diurnalAmplitude: 5, baseHumidity: 80, baseRainChance: 40},
	entities.ZoneArid:          {baseTemp: 24, seasonalAmplitude: 8, diurnalAmplitude: 13, baseHumidity: 30, baseRainChance: 10},
	entities.ZoneMediterranean: {baseTemp: 18, seasonalAmplitude: 9, diurnalAmplitude: 8, baseHumidity: 60, baseRainChance: 25},
	entities.ZoneContinental:   {baseTemp: 10, seasonalAmplitude: 14, diurnalAmplitude: 9, baseHumidity: 65, baseRainChance: 30},
	entities.ZonePolar:         {baseTemp: -5, seasonalAmplitude: 12, diurnalAmplitude: 5, baseHumidity: 75, baseRainChance: 20},
}

// Dry-condition pools per season; the same seed selects an index so the
// choice stays stable for a given location and hour.
var seasonConditions = map[string][]entities.WeatherCondition{
	"winter": {entities.ConditionCloudy, entities.ConditionOvercast, entities.ConditionFog, entities.ConditionClear},
	"spring": {entities.ConditionPartlyCloudy, entities.ConditionSunny, entities.ConditionWindy, entities.ConditionClear},
	"summer": {entities.ConditionSunny, entities.ConditionClear, entities.ConditionPartlyCloudy},
	"fall":   {entities.ConditionCloudy, entities.ConditionOvercast, entities.ConditionPartlyCloudy, entities.ConditionWindy},
}

var conditionDescriptions = map[entities.WeatherCondition]string{
	entities.ConditionClear:        "Clear sky",
	entities.ConditionSunny:        "Sunny",
	entities.ConditionPartlyCloudy: "Partly cloudy",
	entities.ConditionCloudy:       "Cloudy",
	entities.ConditionOvercast:     "Overcast",
	entities.ConditionLightRain:    "Light rain",
	entities.ConditionRain:         "Rain",
	entities.ConditionHeavyRain:    "Heavy rain",
	entities.ConditionSnow:         "Light snow",
	entities.ConditionFog:          "Fog",
	entities.ConditionWindy:        "Windy",
}

// SimulatedProvider produces a deterministic weather context as a pure
// function of (location, time). Repeated calls with identical inputs
// return identical output; results are memoized for 15 minutes.
type SimulatedProvider struct {
	cache *expirable.LRU[string, *entities.Weather]
}

var _ providers.WeatherProvider = (*SimulatedProvider)(nil)

// NewSimulatedProvider creates a new simulated weather provider
func NewSimulatedProvider(cacheTTL time.Duration) *SimulatedProvider {
	return &SimulatedProvider{
		cache: expirable.NewLRU[string, *entities.Weather](512, nil, cacheTTL),
	}
}

// CurrentWeather returns the simulated weather for a location and time.
func (p *SimulatedProvider) CurrentWeather(_ context.Context, lat, lng float64, at time.Time) (*entities.Weather, error) {
	day := at.YearDay()
	hour := at.Hour()

	cacheKey := fmt.Sprintf("%.2f,%.2f,%d,%d", lat, lng, day, hour)
	if cached, ok := p.cache.Get(cacheKey); ok {
		return cached, nil
	}

	zone := ClimateZoneFor(lat)
	pattern := zonePatterns[zone]
	season := seasonFor(lat, at.Month())

	// Seasonal sinusoid over the year, peaking around late July in the
	// northern hemisphere and flipped for the southern.
	seasonal := pattern.seasonalAmplitude * math.Cos(2*math.Pi*float64(day-202)/365)
	if lat < 0 {
		seasonal = -seasonal
	}

	// Diurnal sinusoid peaking mid-afternoon.
	diurnal := pattern.diurnalAmplitude * math.Cos(2*math.Pi*float64(hour-14)/24) / 2

	jitter := (pseudoRandom(lat, lng, day, hour, 0) - 0.5) * 6
	temperature := pattern.baseTemp + seasonal + diurnal + jitter

	rainChance := pattern.baseRainChance + seasonalRainAdjustment(season)
	rainChance = math.Max(0, math.Min(100, rainChance))

	conditionRoll := pseudoRandom(lat, lng, day, hour, 1)
	var condition entities.WeatherCondition
	switch {
	case conditionRoll*100 < rainChance && temperature < 0:
		condition = entities.ConditionSnow
	case conditionRoll*100 < rainChance && conditionRoll < 0.3*rainChance/100:
		condition = entities.ConditionLightRain
	case conditionRoll*100 < rainChance && conditionRoll < 0.7*rainChance/100:
		condition = entities.ConditionRain
	case conditionRoll*100 < rainChance:
		condition = entities.ConditionHeavyRain
	default:
		pool := seasonConditions[season]
		condition = pool[int(conditionRoll*float64(len(pool)))%len(pool)]
	}

	humidity := pattern.baseHumidity + (pseudoRandom(lat, lng, day, hour, 2)-0.5)*20
	humidity = math.Max(20, math.Min(100, humidity))

	wind := math.Max(0, 5+(pseudoRandom(lat, lng, day, hour, 3)-0.5)*20)

	feelsLike := temperature
	if temperature > 20 && humidity > 60 {
		feelsLike = temperature + (humidity-60)/40*3
	} else if temperature < 10 && wind > 15 {
		feelsLike = temperature - wind/10
	}

	precipChance := math.Max(0, rainChance-20)
	switch condition {
	case entities.ConditionLightRain, entities.ConditionRain, entities.ConditionHeavyRain, entities.ConditionSnow:
		precipChance = rainChance
	}

	weather := &entities.Weather{
		TemperatureCelsius:    round1(temperature),
		TemperatureFahrenheit: round1(temperature*9/5 + 32),
		FeelsLikeCelsius:      round1(feelsLike),
		Condition:             condition,
		Description:           conditionDescriptions[condition],
		Humidity:              round1(humidity),
		WindSpeedKmh:          round1(wind),
		PrecipitationChance:   round1(precipChance),
		ClimateZone:           zone,
		Timestamp:             at,
		Location:              entities.Location{Latitude: lat, Longitude: lng},
		IsSimulated:           true,
	}

	p.cache.Add(cacheKey, weather)
	return weather, nil
}

// ClimateZoneFor maps a latitude to its coarse climate band.
func ClimateZoneFor(lat float64) entities.ClimateZone {
	absLat := math.Abs(lat)
	switch {
	case absLat < 23.5:
		return entities.ZoneTropical
	case absLat < 35:
		return entities.ZoneArid
	case absLat < 45:
		return entities.ZoneMediterranean
	case absLat < 60:
		return entities.ZoneContinental
	default:
		return entities.ZonePolar
	}
}

// BoostsFor returns the fixed category boost table for a weather state.
// Weather only boosts; every multiplier is at or above neutral 1.0.
func BoostsFor(w *entities.Weather) map[string]float64 {
	boosts := make(map[string]float64)

	switch {
	case w.IsRainy():
		boosts["indoor"] = 1.5
		boosts["mall"] = 1.4
		boosts["cinema"] = 1.4
		boosts["museum"] = 1.3
		boosts["covered"] = 1.3
		boosts["arcade"] = 1.2
	case w.IsHot():
		boosts["ice cream"] = 1.5
		boosts["cold drinks"] = 1.4
		boosts["pool"] = 1.4
		boosts["mall"] = 1.2
		boosts["aquarium"] = 1.2
	case w.IsCold():
		boosts["coffee"] = 1.4
		boosts["warm food"] = 1.4
		boosts["soup"] = 1.3
		boosts["spa"] = 1.2
		boosts["indoor"] = 1.2
	case w.IsPleasant():
		boosts["outdoor"] = 1.5
		boosts["outdoor-seating"] = 1.4
		boosts["park"] = 1.4
		boosts["market"] = 1.2
		boosts["trail"] = 1.2
	}

	switch w.Condition {
	case entities.ConditionSnow:
		boosts["winter sports"] = 1.4
		boosts["hot chocolate"] = 1.3
	case entities.ConditionFog:
		boosts["bookstore"] = 1.2
		boosts["coffee"] = 1.2
	}

	return boosts
}

func seasonFor(lat float64, month time.Month) string {
	var season string
	switch month {
	case time.December, time.January, time.February:
		season = "winter"
	case time.March, time.April, time.May:
		season = "spring"
	case time.June, time.July, time.August:
		season = "summer"
	default:
		season = "fall"
	}

	if lat < 0 {
		opposite := map[string]string{
			"winter": "summer",
			"spring": "fall",
			"summer": "winter",
			"fall":   "spring",
		}
		season = opposite[season]
	}
	return season
}

func seasonalRainAdjustment(season string) float64 {
	switch season {
	case "winter", "spring", "fall":
		return 5
	default:
		return -10
	}
}

// pseudoRandom derives a stable value in [0, 1) from the rounded
// location, day of year, hour, and a salt for independent draws.
func pseudoRandom(lat, lng float64, day, hour, salt int) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.2f,%.2f,%d,%d,%d", lat, lng, day, hour, salt)
	return float64(h.Sum64()%1_000_000_000) / 1_000_000_000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
