package geo

import (
	"math"

	"github.com/routeview/mapkit/pkg/util"
)

const TileSize = 256.0

// ProjectPixel projects a coordinate to world pixel space (web mercator) at
// the given zoom. Latitude is clamped to the mercator limit.
func ProjectPixel(c Coordinate, zoom float64) (float64, float64) {
	scale := TileSize * math.Exp2(zoom)

	lat := math.Max(-85.05112878, math.Min(85.05112878, c.Lat))
	siny := math.Sin(util.DegreeToRadians(lat))

	x := scale * (0.5 + c.Lon/360.0)
	y := scale * (0.5 - math.Log((1+siny)/(1-siny))/(4*math.Pi))
	return x, y
}

// UnprojectPixel is the inverse of ProjectPixel.
func UnprojectPixel(x, y, zoom float64) Coordinate {
	scale := TileSize * math.Exp2(zoom)

	lon := (x/scale - 0.5) * 360.0
	n := math.Pi - 2*math.Pi*(y/scale)
	lat := util.RadiansToDegree(math.Atan(math.Sinh(n)))
	return NewCoordinate(lat, lon)
}

// ZoomForBounds returns the largest zoom at which bounds fit inside a
// width x height pixel viewport with padding pixels on each side.
func ZoomForBounds(b Bounds, width, height, padding int) float64 {
	innerW := float64(width - 2*padding)
	innerH := float64(height - 2*padding)
	if innerW <= 0 || innerH <= 0 {
		innerW = float64(width)
		innerH = float64(height)
	}

	// pixel extent of the box at zoom 0
	minX, maxY := ProjectPixel(NewCoordinate(b.MinLat, b.MinLon), 0)
	maxX, minY := ProjectPixel(NewCoordinate(b.MaxLat, b.MaxLon), 0)

	dx := math.Abs(maxX - minX)
	dy := math.Abs(maxY - minY)
	if dx == 0 && dy == 0 {
		return 0
	}

	zoom := math.MaxFloat64
	if dx > 0 {
		zoom = math.Min(zoom, math.Log2(innerW/dx))
	}
	if dy > 0 {
		zoom = math.Min(zoom, math.Log2(innerH/dy))
	}
	return math.Max(0, zoom)
}
