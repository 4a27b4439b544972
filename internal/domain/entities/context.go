package entities

import (
	"time"
)

// TimeBucket classifies the local hour for contextual boosting.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"    // 06:00-11:00
	BucketMidday    TimeBucket = "midday"     // 11:00-14:00, lunch sub-bucket 12:00-14:00
	BucketEvening   TimeBucket = "evening"    // 18:00-23:00
	BucketLateNight TimeBucket = "late_night" // everything else
)

// ClimateZone is a coarse latitude-derived classification used to
// parameterize the weather simulator.
type ClimateZone string

const (
	ZoneTropical      ClimateZone = "tropical"
	ZoneArid          ClimateZone = "arid"
	ZoneMediterranean ClimateZone = "mediterranean"
	ZoneContinental   ClimateZone = "continental"
	ZonePolar         ClimateZone = "polar"
)

// WeatherCondition is a simulated condition label.
type WeatherCondition string

const (
	ConditionSunny        WeatherCondition = "sunny"
	ConditionClear        WeatherCondition = "clear"
	ConditionPartlyCloudy WeatherCondition = "partly_cloudy"
	ConditionCloudy       WeatherCondition = "cloudy"
	ConditionOvercast     WeatherCondition = "overcast"
	ConditionLightRain    WeatherCondition = "light_rain"
	ConditionRain         WeatherCondition = "rain"
	ConditionHeavyRain    WeatherCondition = "heavy_rain"
	ConditionSnow         WeatherCondition = "snow"
	ConditionFog          WeatherCondition = "fog"
	ConditionWindy        WeatherCondition = "windy"
)

// Weather is the simulated environmental state for a location and time.
type Weather struct {
	TemperatureCelsius    float64          `json:"temperature_celsius"`
	TemperatureFahrenheit float64          `json:"temperature_fahrenheit"`
	FeelsLikeCelsius      float64          `json:"feels_like_celsius"`
	Condition             WeatherCondition `json:"condition"`
	Description           string           `json:"description"`
	Humidity              float64          `json:"humidity"`
	WindSpeedKmh          float64          `json:"wind_speed_kmh"`
	PrecipitationChance   float64          `json:"precipitation_chance"`
	ClimateZone           ClimateZone      `json:"climate_zone"`
	Timestamp             time.Time        `json:"timestamp"`
	Location              Location         `json:"location"`
	IsSimulated           bool             `json:"is_simulated"`
}

// IsHot reports temperatures above 25°C.
func (w *Weather) IsHot() bool {
	return w.TemperatureCelsius > 25
}

// IsCold reports temperatures below 10°C.
func (w *Weather) IsCold() bool {
	return w.TemperatureCelsius < 10
}

// IsRainy reports rain-like conditions or a high precipitation chance.
func (w *Weather) IsRainy() bool {
	switch w.Condition {
	case ConditionLightRain, ConditionRain, ConditionHeavyRain:
		return true
	}
	return w.PrecipitationChance > 50
}

// IsPleasant reports weather suited to outdoor activities.
func (w *Weather) IsPleasant() bool {
	switch w.Condition {
	case ConditionClear, ConditionSunny, ConditionPartlyCloudy:
		return w.TemperatureCelsius >= 10 && w.TemperatureCelsius <= 25 &&
			w.PrecipitationChance < 20
	}
	return false
}

// ContextualFactors is the full situational context computed fresh per
// request. Boost tables map category/tag keywords to multipliers with
// 1.0 as neutral.
type ContextualFactors struct {
	TimeBucket    TimeBucket         `json:"time_bucket"`
	IsLunch       bool               `json:"is_lunch"`
	IsWeekend     bool               `json:"is_weekend"`
	Weather       *Weather           `json:"weather,omitempty"`
	TimeBoosts    map[string]float64 `json:"time_boosts"`
	WeatherBoosts map[string]float64 `json:"weather_boosts"`
	Summary       string             `json:"summary"`
	GeneratedAt   time.Time          `json:"generated_at"`
}
