package spatialindex

import (
	"sort"
	"strings"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Place is a named location stored in the index.
type Place struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Address string         `json:"address"`
	Point   geo.Coordinate `json:"point"`
}

// Index is an r-tree over named places, backing reverse geocoding and
// location suggestions.
type Index struct {
	tr     *rtree.RTreeG[Place]
	places []Place
}

func NewIndex() *Index {
	var tr rtree.RTreeG[Place]
	return &Index{
		tr: &tr,
	}
}

// Build inserts all places, each leaf getting a bounding box with radius
// boundingBoxRadius (in km) around the place.
func (idx *Index) Build(places []Place, boundingBoxRadius float64, log *zap.Logger) {
	log.Info("building place spatial index", zap.Int("places", len(places)))
	for _, p := range places {
		lowerLat, lowerLon := geo.GetDestinationPoint(p.Point.Lat, p.Point.Lon, 225, boundingBoxRadius)
		upperLat, upperLon := geo.GetDestinationPoint(p.Point.Lat, p.Point.Lon, 45, boundingBoxRadius)

		idx.tr.Insert([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat}, p)
	}
	idx.places = append(idx.places, places...)
	log.Info("place spatial index built")
}

// SearchWithinRadius returns places within radius (in km) from the query
// point, nearest first.
func (idx *Index) SearchWithinRadius(q geo.Coordinate, radius float64) []Place {
	lowerLat, lowerLon := geo.GetDestinationPoint(q.Lat, q.Lon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(q.Lat, q.Lon, 45, radius)

	results := make([]Place, 0, 10)
	idx.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, p Place) bool {
			if geo.CalculateHaversineDistance(q.Lat, q.Lon, p.Point.Lat, p.Point.Lon) <= radius {
				results = append(results, p)
			}
			return true
		})

	sort.Slice(results, func(i, j int) bool {
		di := geo.CalculateHaversineDistance(q.Lat, q.Lon, results[i].Point.Lat, results[i].Point.Lon)
		dj := geo.CalculateHaversineDistance(q.Lat, q.Lon, results[j].Point.Lat, results[j].Point.Lon)
		return di < dj
	})
	return results
}

// Nearest returns the closest place to the query point, searching with an
// expanding radius up to maxRadius (in km).
func (idx *Index) Nearest(q geo.Coordinate, maxRadius float64) (Place, bool) {
	for radius := 0.5; radius <= maxRadius; radius *= 2 {
		if found := idx.SearchWithinRadius(q, radius); len(found) > 0 {
			return found[0], true
		}
	}
	return Place{}, false
}

// Suggest returns places whose name or address contains the query,
// case-insensitive. When near is given, results closer to it come first.
func (idx *Index) Suggest(query string, near *geo.Coordinate, limit int) []Place {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matched := make([]Place, 0, limit)
	for _, p := range idx.places {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Address), query) {
			matched = append(matched, p)
		}
	}

	if near != nil && near.Valid() {
		sort.Slice(matched, func(i, j int) bool {
			di := geo.CalculateHaversineDistance(near.Lat, near.Lon, matched[i].Point.Lat, matched[i].Point.Lon)
			dj := geo.CalculateHaversineDistance(near.Lat, near.Lon, matched[j].Point.Lat, matched[j].Point.Lon)
			return di < dj
		})
	} else {
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].Name < matched[j].Name
		})
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

// Size returns the number of indexed places.
func (idx *Index) Size() int {
	return len(idx.places)
}
