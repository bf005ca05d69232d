package geo

import "math"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func NewCoordinates(lat, lon []float64) []Coordinate {
	coords := make([]Coordinate, len(lat))
	for i := range lat {
		coords[i] = NewCoordinate(lat[i], lon[i])
	}
	return coords
}

// FallbackCenter is the point substituted for any invalid coordinate before it
// reaches a rendering engine. Jakarta city center.
func FallbackCenter() Coordinate {
	return NewCoordinate(-6.175392, 106.827153)
}

// IsValidLatLon reports whether (lat, lon) is a renderable coordinate:
// both finite, |lat| <= 90, |lon| <= 180.
func IsValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return false
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return math.Abs(lat) <= 90.0 && math.Abs(lon) <= 180.0
}

func (c Coordinate) Valid() bool {
	return IsValidLatLon(c.Lat, c.Lon)
}

// NormalizePoint returns c unchanged when valid, else the fallback center.
func NormalizePoint(c Coordinate) Coordinate {
	if c.Valid() {
		return c
	}
	return FallbackCenter()
}
