// Package geometry normalizes route geometry arriving from upstream routing
// providers. The same route can show up as a WKT LINESTRING, a geojson-like
// coordinates array, or a bare pair array, and the axis order of pair arrays
// is not tagged. Everything funnels into one validated (lat, lon) sequence.
package geometry

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/routeview/mapkit/pkg/geo"
)

var linestringRe = regexp.MustCompile(`(?i)LINESTRING\s*\(([^)]*)\)`)

// NormalizeLineGeometry converts raw route geometry into a path of at least
// two valid (lat, lon) coordinates. Accepted shapes for raw:
//   - string: WKT LINESTRING(lon lat, lon lat, ...)
//   - map with a "coordinates" field, or a bare array of 2-element pairs:
//     axis order is guessed per pair (see resolvePair)
//
// Anything else, or fewer than two surviving points, degenerates to the
// two-endpoint path [from, to].
func NormalizeLineGeometry(raw interface{}, from, to geo.Coordinate) []geo.Coordinate {
	var path []geo.Coordinate

	switch v := raw.(type) {
	case string:
		path = parseWKTLineString(v)
	default:
		pairs := extractPairs(raw)
		for _, p := range pairs {
			c, ok := resolvePair(p[0], p[1])
			if !ok {
				continue
			}
			path = append(path, c)
		}
	}

	if len(path) < 2 {
		return fallbackPath(from, to)
	}
	return path
}

// NormalizeLatLonLineGeometry is NormalizeLineGeometry for a source already
// known to deliver (lat, lon) pairs. Pairs are still validated and the same
// two-endpoint fallback applies.
func NormalizeLatLonLineGeometry(raw interface{}, from, to geo.Coordinate) []geo.Coordinate {
	var path []geo.Coordinate

	for _, p := range extractPairs(raw) {
		if !geo.IsValidLatLon(p[0], p[1]) {
			continue
		}
		path = append(path, geo.NewCoordinate(p[0], p[1]))
	}

	if len(path) < 2 {
		return fallbackPath(from, to)
	}
	return path
}

func fallbackPath(from, to geo.Coordinate) []geo.Coordinate {
	return []geo.Coordinate{geo.NormalizePoint(from), geo.NormalizePoint(to)}
}

// resolvePair guesses the axis order of an untagged pair. When exactly one
// component is impossible as a latitude (|v| > 90) it must be the longitude.
// Otherwise the order is genuinely ambiguous (near-equator coordinates carry
// no signal) and we assume (lon, lat), the order both WKT and geojson use.
// This is a heuristic, not a guarantee.
func resolvePair(a, b float64) (geo.Coordinate, bool) {
	aOverLat := a > 90.0 || a < -90.0
	bOverLat := b > 90.0 || b < -90.0

	var lat, lon float64
	switch {
	case aOverLat && !bOverLat:
		lon, lat = a, b
	case bOverLat && !aOverLat:
		lon, lat = b, a
	default:
		lon, lat = a, b
	}

	if !geo.IsValidLatLon(lat, lon) {
		return geo.Coordinate{}, false
	}
	return geo.NewCoordinate(lat, lon), true
}

// parseWKTLineString extracts coordinates from a WKT LINESTRING. WKT stores
// pairs as "lon lat".
func parseWKTLineString(s string) []geo.Coordinate {
	m := linestringRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	var path []geo.Coordinate
	for _, token := range strings.Split(m[1], ",") {
		fields := strings.Fields(strings.TrimSpace(token))
		if len(fields) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(fields[0], 64)
		lat, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if !geo.IsValidLatLon(lat, lon) {
			continue
		}
		path = append(path, geo.NewCoordinate(lat, lon))
	}
	return path
}

// extractPairs flattens the supported pair-array shapes into [][2]float64.
// A map shape contributes its "coordinates" field.
func extractPairs(raw interface{}) [][2]float64 {
	switch v := raw.(type) {
	case map[string]interface{}:
		coords, ok := v["coordinates"]
		if !ok {
			return nil
		}
		return extractPairs(coords)
	case [][2]float64:
		return v
	case [][]float64:
		pairs := make([][2]float64, 0, len(v))
		for _, p := range v {
			if len(p) < 2 {
				continue
			}
			pairs = append(pairs, [2]float64{p[0], p[1]})
		}
		return pairs
	case []geo.Coordinate:
		pairs := make([][2]float64, 0, len(v))
		for _, c := range v {
			pairs = append(pairs, [2]float64{c.Lat, c.Lon})
		}
		return pairs
	case []interface{}:
		pairs := make([][2]float64, 0, len(v))
		for _, e := range v {
			p, ok := toPair(e)
			if !ok {
				continue
			}
			pairs = append(pairs, p)
		}
		return pairs
	default:
		return nil
	}
}

func toPair(e interface{}) ([2]float64, bool) {
	switch p := e.(type) {
	case []float64:
		if len(p) < 2 {
			return [2]float64{}, false
		}
		return [2]float64{p[0], p[1]}, true
	case [2]float64:
		return p, true
	case []interface{}:
		if len(p) < 2 {
			return [2]float64{}, false
		}
		a, okA := toFloat(p[0])
		b, okB := toFloat(p[1])
		if !okA || !okB {
			return [2]float64{}, false
		}
		return [2]float64{a, b}, true
	default:
		return [2]float64{}, false
	}
}

func toFloat(e interface{}) (float64, bool) {
	switch n := e.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
