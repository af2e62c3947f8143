// Package geo implements great-circle distance and radius filtering over
// in-memory address lists.
package geo

import (
	"math"

	"address-api/internal/models"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0088

// UnitKilometers is the only distance unit reported by FilterByRadius.
const UnitKilometers = "km"

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	// Rounding can push h slightly above 1 for antipodal points.
	h = math.Min(h, 1)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// FilterByRadius returns the records whose distance from origin, rounded to
// two decimals, is at most maxDistanceKm. Input order is preserved.
func FilterByRadius(records []models.Address, origin Point, maxDistanceKm float64) []models.AddressWithDistance {
	result := make([]models.AddressWithDistance, 0, len(records))
	for _, rec := range records {
		d := round2(Distance(Point{Lat: rec.Latitude, Lng: rec.Longitude}, origin))
		if d > maxDistanceKm || math.IsNaN(maxDistanceKm) {
			continue
		}
		result = append(result, models.AddressWithDistance{
			ID:           rec.ID,
			Name:         rec.Name,
			Latitude:     rec.Latitude,
			Longitude:    rec.Longitude,
			Coordinates:  [2]float64{rec.Latitude, rec.Longitude},
			Distance:     d,
			DistanceUnit: UnitKilometers,
		})
	}

	return result
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
