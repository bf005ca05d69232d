package routingclient

import (
	"encoding/json"

	"github.com/routeview/mapkit/pkg/geo"
)

// RoutePreview mirrors GET /routes/preview. Geometry is format-tagged nowhere
// upstream, so it stays raw until the geometry normalizer looks at it.
// GeometryLatLon, when present, is already ordered (lat, lon).
type RoutePreview struct {
	Mode           string          `json:"mode"`
	DurationSec    float64         `json:"duration_sec"`
	DistanceM      float64         `json:"distance_m"`
	FromPoint      geo.Coordinate  `json:"from_point"`
	ToPoint        geo.Coordinate  `json:"to_point"`
	Geometry       json.RawMessage `json:"geometry"`
	GeometryLatLon [][]float64     `json:"geometry_latlon,omitempty"`
}

// RawGeometry decodes the untyped geometry payload: a WKT string, a
// geojson-like object, or a bare pair array.
func (rp *RoutePreview) RawGeometry() interface{} {
	if len(rp.Geometry) == 0 {
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(rp.Geometry, &raw); err != nil {
		return nil
	}
	return raw
}

type Recommendation struct {
	Mode          string  `json:"mode"`
	DurationSec   float64 `json:"duration_sec"`
	DistanceM     float64 `json:"distance_m"`
	EstimatedCost float64 `json:"estimated_cost"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
}

type Suggestion struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

type Place struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type RuntimeConfig struct {
	APIKey string   `json:"api_key"`
	Layers []string `json:"layers"`
}
