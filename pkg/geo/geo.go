package geo

import (
	"fmt"
	"math"

	apperrors "github.com/nearspot/business-discovery/pkg/errors"
)

const earthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance in kilometers
// between two points on a spherical Earth approximation.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Validate checks that a latitude/longitude pair is within the valid range.
func Validate(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.NewInvalidCoordinateError(fmt.Sprintf("latitude %v out of range [-90, 90]", lat))
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return apperrors.NewInvalidCoordinateError(fmt.Sprintf("longitude %v out of range [-180, 180]", lng))
	}
	return nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
