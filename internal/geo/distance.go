// Package geo computes great-circle distances between coordinates.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// DistanceMeters returns the haversine distance between two coordinates.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// From returns the distance from p to the given coordinate.
func (p Point) From(lat, lon float64) float64 {
	return DistanceMeters(p.Lat, p.Lon, lat, lon)
}

// FormatDistance renders a distance for display: metres below one kilometre,
// kilometres with one decimal above. Unknown distances render as "-".
func FormatDistance(m *float64) string {
	if m == nil || math.IsNaN(*m) || math.IsInf(*m, 0) {
		return "-"
	}
	if *m < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(*m)))
	}
	return fmt.Sprintf("%.1f km", *m/1000)
}
