package controllers

import (
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/http/usecases"
	"github.com/routeview/mapkit/pkg/spatialindex"
)

type previewRequest struct {
	FromLat float64 `json:"from_lat" validate:"required,min=-90,max=90"`
	FromLon float64 `json:"from_lon" validate:"required,min=-180,max=180"`
	ToLat   float64 `json:"to_lat" validate:"required,min=-90,max=90"`
	ToLon   float64 `json:"to_lon" validate:"required,min=-180,max=180"`
	Mode    string  `json:"mode" validate:"required"`
}

type recommendationsRequest struct {
	FromLat float64  `json:"from_lat" validate:"required,min=-90,max=90"`
	FromLon float64  `json:"from_lon" validate:"required,min=-180,max=180"`
	ToLat   float64  `json:"to_lat" validate:"required,min=-90,max=90"`
	ToLon   float64  `json:"to_lon" validate:"required,min=-180,max=180"`
	Modes   []string `json:"modes" validate:"required,min=1"`
}

type reverseRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

type previewResponse struct {
	Mode           string         `json:"mode"`
	DurationSec    float64        `json:"duration_sec"`
	DistanceM      float64        `json:"distance_m"`
	FromPoint      geo.Coordinate `json:"from_point"`
	ToPoint        geo.Coordinate `json:"to_point"`
	Geometry       string         `json:"geometry"`
	GeometryLatLon [][]float64    `json:"geometry_latlon"`
}

func NewPreviewResponse(result *usecases.PreviewResult) previewResponse {
	return previewResponse{
		Mode:           result.Mode,
		DurationSec:    result.DurationSec,
		DistanceM:      result.DistanceM,
		FromPoint:      result.From,
		ToPoint:        result.To,
		Geometry:       result.GeometryWKT,
		GeometryLatLon: result.GeometryLatLon,
	}
}

type recommendationResponse struct {
	Mode          string  `json:"mode"`
	DurationSec   float64 `json:"duration_sec"`
	DistanceM     float64 `json:"distance_m"`
	EstimatedCost float64 `json:"estimated_cost"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
}

func NewRecommendationsResponse(options []usecases.RouteOption) []recommendationResponse {
	out := make([]recommendationResponse, len(options))
	for i, opt := range options {
		out[i] = recommendationResponse{
			Mode:          opt.Mode,
			DurationSec:   opt.DurationSec,
			DistanceM:     opt.DistanceM,
			EstimatedCost: opt.EstimatedCost,
			Score:         opt.Score,
			Reason:        opt.Reason,
		}
	}
	return out
}

type suggestionResponse struct {
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func NewSuggestionsResponse(places []spatialindex.Place) []suggestionResponse {
	out := make([]suggestionResponse, len(places))
	for i, p := range places {
		out[i] = suggestionResponse{
			Title:    p.Name,
			Subtitle: p.Address,
			Lat:      p.Point.Lat,
			Lon:      p.Point.Lon,
		}
	}
	return out
}

type placeResponse struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

func NewPlaceResponse(p spatialindex.Place) placeResponse {
	return placeResponse{
		Label: p.Name,
		Lat:   p.Point.Lat,
		Lon:   p.Point.Lon,
	}
}

type runtimeConfigResponse struct {
	APIKey string   `json:"api_key"`
	Layers []string `json:"layers"`
}

func NewRuntimeConfigResponse(cfg usecases.RuntimeConfig) runtimeConfigResponse {
	return runtimeConfigResponse{
		APIKey: cfg.APIKey,
		Layers: cfg.Layers,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
