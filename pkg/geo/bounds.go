package geo

import "math"

// Bounds is a lat/lon aligned bounding box.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

func NewBounds(minLat, minLon, maxLat, maxLon float64) Bounds {
	return Bounds{
		MinLat: minLat,
		MinLon: minLon,
		MaxLat: maxLat,
		MaxLon: maxLon,
	}
}

// CalcBounds scans points, skipping invalid ones. ok is false when no valid
// point was seen.
func CalcBounds(points []Coordinate) (Bounds, bool) {
	b := Bounds{
		MinLat: math.MaxFloat64,
		MinLon: math.MaxFloat64,
		MaxLat: -math.MaxFloat64,
		MaxLon: -math.MaxFloat64,
	}
	found := false
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		found = true
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	if !found {
		return Bounds{}, false
	}
	return b, true
}

func (b Bounds) Center() Coordinate {
	return NewCoordinate((b.MinLat+b.MaxLat)/2.0, (b.MinLon+b.MaxLon)/2.0)
}

// IsPoint reports whether the box collapsed to a single point.
func (b Bounds) IsPoint() bool {
	return b.MinLat == b.MaxLat && b.MinLon == b.MaxLon
}
