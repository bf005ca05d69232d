package usecases

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// per-mode travel profile used by the stub's route maths
type modeProfile struct {
	speedKMH  float64
	costPerKM float64
	fixedCost float64
}

var modeProfiles = map[string]modeProfile{
	"car":        {speedKMH: 35, costPerKM: 3500, fixedCost: 0},
	"motorcycle": {speedKMH: 30, costPerKM: 2200, fixedCost: 0},
	"transit":    {speedKMH: 22, costPerKM: 450, fixedCost: 3500},
	"bicycle":    {speedKMH: 14, costPerKM: 0, fixedCost: 0},
	"walk":       {speedKMH: 4.5, costPerKM: 0, fixedCost: 0},
}

const geometrySteps = 16

type RoutesUsecase struct {
	log *zap.Logger
}

func NewRoutesUsecase(log *zap.Logger) *RoutesUsecase {
	return &RoutesUsecase{log: log}
}

// RoutePreview computes a straight interpolated route between from and to.
// The stub has no road graph, so the geometry is the great-circle chord
// sampled at fixed steps. departureAt only shifts transit durations.
func (uc *RoutesUsecase) RoutePreview(from, to geo.Coordinate, mode string,
	departureAt *time.Time) (*PreviewResult, error) {
	profile, ok := modeProfiles[mode]
	if !ok {
		return nil, util.WrapErrorf(fmt.Errorf("mode %q", mode), util.ErrBadParamInput,
			"unsupported travel mode")
	}

	distKM := geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon)
	durationSec := distKM / profile.speedKMH * 3600.0
	if mode == "transit" && departureAt != nil {
		// off-peak transit runs less often
		hour := departureAt.Hour()
		if hour < 6 || hour > 21 {
			durationSec *= 1.4
		}
	}

	path := interpolatePath(from, to, geometrySteps)

	uc.log.Debug("computed route preview",
		zap.String("mode", mode),
		zap.Float64("distance_km", distKM),
		zap.Int("points", len(path)))

	return &PreviewResult{
		Mode:           mode,
		DurationSec:    util.RoundFloat(durationSec, 1),
		DistanceM:      util.RoundFloat(distKM*1000.0, 1),
		From:           from,
		To:             to,
		GeometryWKT:    toWKTLineString(path),
		GeometryLatLon: toLatLonPairs(path),
	}, nil
}

// Recommendations ranks the requested modes for the trip. Score favours
// short door-to-door time, with cost as a tiebreaker.
func (uc *RoutesUsecase) Recommendations(from, to geo.Coordinate, modes []string) ([]RouteOption, error) {
	distKM := geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon)

	options := make([]RouteOption, 0, len(modes))
	for _, mode := range modes {
		profile, ok := modeProfiles[mode]
		if !ok {
			return nil, util.WrapErrorf(fmt.Errorf("mode %q", mode), util.ErrBadParamInput,
				"unsupported travel mode")
		}

		durationSec := distKM / profile.speedKMH * 3600.0
		cost := profile.fixedCost + distKM*profile.costPerKM

		score := 100.0 - durationSec/60.0
		score -= cost / 10000.0
		if score < 0 {
			score = 0
		}

		options = append(options, RouteOption{
			Mode:          mode,
			DurationSec:   util.RoundFloat(durationSec, 1),
			DistanceM:     util.RoundFloat(distKM*1000.0, 1),
			EstimatedCost: util.RoundFloat(cost, 0),
			Score:         util.RoundFloat(score, 2),
			Reason:        recommendationReason(mode, durationSec, cost),
		})
	}

	sort.Slice(options, func(i, j int) bool {
		return options[i].Score > options[j].Score
	})
	return options, nil
}

func (uc *RoutesUsecase) RuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		APIKey: viper.GetString("VENDOR_MAP_API_KEY"),
		Layers: viper.GetStringSlice("VENDOR_MAP_LAYERS"),
	}
}

func recommendationReason(mode string, durationSec, cost float64) string {
	switch {
	case cost == 0:
		return fmt.Sprintf("%s is free and takes about %d minutes", mode, int(durationSec/60))
	default:
		return fmt.Sprintf("%s takes about %d minutes", mode, int(durationSec/60))
	}
}

func interpolatePath(from, to geo.Coordinate, steps int) []geo.Coordinate {
	path := make([]geo.Coordinate, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		path = append(path, geo.NewCoordinate(
			from.Lat+(to.Lat-from.Lat)*t,
			from.Lon+(to.Lon-from.Lon)*t,
		))
	}
	return path
}

// toWKTLineString writes the path as LINESTRING(lon lat, ...), the axis
// order WKT mandates.
func toWKTLineString(path []geo.Coordinate) string {
	var sb strings.Builder
	sb.WriteString("LINESTRING(")
	for i, p := range path {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(p.Lon, 'f', 6, 64))
		sb.WriteString(" ")
		sb.WriteString(strconv.FormatFloat(p.Lat, 'f', 6, 64))
	}
	sb.WriteString(")")
	return sb.String()
}

func toLatLonPairs(path []geo.Coordinate) [][]float64 {
	pairs := make([][]float64, len(path))
	for i, p := range path {
		pairs[i] = []float64{p.Lat, p.Lon}
	}
	return pairs
}
