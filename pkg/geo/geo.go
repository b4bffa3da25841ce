// Package geo holds the great-circle math shared by search ranking,
// the in-memory spatial index and distance display strings.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the IUGG mean Earth radius.
const EarthRadiusMeters = 6371008.8

// Point is a WGS84 position. Lng comes first to match the GeoJSON wire order.
type Point struct {
	Lng float64
	Lat float64
}

// Valid reports whether both components are finite and inside their ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) || math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	return p.Lng >= -180 && p.Lng <= 180 && p.Lat >= -90 && p.Lat <= 90
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(a.Lat))*math.Cos(degreesToRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Within reports whether b lies within radius meters of a.
func Within(a, b Point, radius float64) bool {
	return Distance(a, b) <= radius
}

// Box is a lat/lng rectangle. When it crosses the antimeridian MinLng > MaxLng.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether p falls inside the box.
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.MinLng <= b.MaxLng {
		return p.Lng >= b.MinLng && p.Lng <= b.MaxLng
	}
	return p.Lng >= b.MinLng || p.Lng <= b.MaxLng
}

// BoundingBox returns a box that contains every point within radius meters
// of center on the sphere used by Distance.
func BoundingBox(center Point, radius float64) Box {
	angular := radius / EarthRadiusMeters
	latR := degreesToRadians(center.Lat)
	minLat := latR - angular
	maxLat := latR + angular

	// Near a pole the circle covers every longitude.
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		return Box{
			MinLat: math.Max(radiansToDegrees(minLat), -90),
			MaxLat: math.Min(radiansToDegrees(maxLat), 90),
			MinLng: -180,
			MaxLng: 180,
		}
	}

	dLng := math.Asin(math.Sin(angular) / math.Cos(latR))
	minLng := center.Lng - radiansToDegrees(dLng)
	maxLng := center.Lng + radiansToDegrees(dLng)
	if minLng < -180 {
		minLng += 360
	}
	if maxLng > 180 {
		maxLng -= 360
	}
	return Box{
		MinLat: radiansToDegrees(minLat),
		MaxLat: radiansToDegrees(maxLat),
		MinLng: minLng,
		MaxLng: maxLng,
	}
}

// FormatDistance renders meters the way the map client shows them:
// whole meters below one kilometer, one decimal kilometer above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm away", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm away", meters/1000)
}
