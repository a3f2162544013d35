package geo

import "math"

// KmPerDegree approximates the length of one degree for nearest-city lookup.
const KmPerDegree = 111.0

// DistanceKm is the flat Euclidean distance between a and b, in degrees times KmPerDegree.
func DistanceKm(a, b Coordinates) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * KmPerDegree
}

// NearestCity returns the closest city whose radius contains c.
func (c *Catalog) NearestCity(at Coordinates) (Place, bool) {
	var (
		best     Place
		bestDist = math.Inf(1)
		found    bool
	)

	for _, city := range c.cities {
		d := DistanceKm(at, city.Coordinates())
		if d <= city.RadiusKm && d < bestDist {
			best, bestDist, found = city, d, true
		}
	}

	return best, found
}
