package services

import (
	"strings"
	"time"

	"github.com/nearspot/business-discovery/internal/domain/entities"
)

// BucketFor classifies a local time into its bucket and reports whether
// it falls inside the lunch window.
func BucketFor(t time.Time) (entities.TimeBucket, bool) {
	hour := t.Hour()
	switch {
	case hour >= 6 && hour < 11:
		return entities.BucketMorning, false
	case hour >= 11 && hour < 14:
		return entities.BucketMidday, hour >= 12
	case hour >= 18 && hour < 23:
		return entities.BucketEvening, false
	default:
		return entities.BucketLateNight, false
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// timeBoostsFor builds the category boost table for a time bucket.
// Multipliers never drop below neutral 1.0.
func timeBoostsFor(bucket entities.TimeBucket, isLunch, isWeekend bool) map[string]float64 {
	boosts := make(map[string]float64)

	switch bucket {
	case entities.BucketMorning:
		boosts["breakfast"] = 1.5
		boosts["coffee"] = 1.4
		boosts["bakery"] = 1.3
		boosts["brunch"] = 1.2
		boosts["gym"] = 1.2
	case entities.BucketMidday:
		boosts["restaurant"] = 1.3
		boosts["food"] = 1.2
		boosts["cafe"] = 1.2
		if isLunch {
			boosts["lunch"] = 1.5
			boosts["restaurant"] = 1.4
			boosts["fast food"] = 1.2
		}
	case entities.BucketEvening:
		boosts["dinner"] = 1.5
		boosts["restaurant"] = 1.4
		boosts["bar"] = 1.3
		boosts["entertainment"] = 1.2
		boosts["cinema"] = 1.2
	case entities.BucketLateNight:
		boosts["bar"] = 1.4
		boosts["club"] = 1.4
		boosts["late night"] = 1.3
		boosts["diner"] = 1.2
		boosts["fast food"] = 1.2
	}

	if isWeekend {
		if boosts["brunch"] < 1.3 {
			boosts["brunch"] = 1.3
		}
		if boosts["market"] < 1.2 {
			boosts["market"] = 1.2
		}
		if boosts["park"] < 1.2 {
			boosts["park"] = 1.2
		}
		if boosts["entertainment"] < 1.2 {
			boosts["entertainment"] = 1.2
		}
	}

	return boosts
}

// matchBoost returns the strongest boost whose keyword appears in the
// candidate's category, tags, or name. Neutral 1.0 when nothing matches.
func matchBoost(table map[string]float64, category, name string, tags []string) float64 {
	if len(table) == 0 {
		return 1.0
	}

	var sb strings.Builder
	sb.WriteString(strings.ToLower(category))
	sb.WriteByte(' ')
	sb.WriteString(strings.ToLower(name))
	for _, tag := range tags {
		sb.WriteByte(' ')
		sb.WriteString(strings.ToLower(tag))
	}
	text := sb.String()

	best := 1.0
	for keyword, mult := range table {
		if mult > best && strings.Contains(text, keyword) {
			best = mult
		}
	}
	return best
}
