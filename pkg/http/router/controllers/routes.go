package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/routeview/mapkit/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type mapAPI struct {
	routesService    RoutesService
	locationsService LocationsService
	log              *zap.Logger
}

func New(routesService RoutesService, locationsService LocationsService, log *zap.Logger) *mapAPI {
	return &mapAPI{
		routesService:    routesService,
		locationsService: locationsService,
		log:              log,
	}
}

func (api *mapAPI) Routes(group *helper.RouteGroup) {
	group.GET("/routes/preview", api.routePreview)
	group.GET("/routes/recommendations", api.recommendations)
	group.GET("/routes/config", api.runtimeConfig)
	group.GET("/routes/locations/suggest", api.suggestLocations)
	group.GET("/routes/locations/reverse", api.reverseGeocode)
}

func (api *mapAPI) routePreview(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request previewRequest
		err     error
	)

	query := r.URL.Query()

	from, err := parsePoint(query.Get("from"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("from is required and must be lat,lon"))
		return
	}
	to, err := parsePoint(query.Get("to"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("to is required and must be lat,lon"))
		return
	}
	request.FromLat, request.FromLon = from.Lat, from.Lon
	request.ToLat, request.ToLon = to.Lat, to.Lon
	request.Mode = query.Get("mode")

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	var departureAt *time.Time
	if raw := query.Get("departure_at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("departure_at must be RFC3339"))
			return
		}
		departureAt = &parsed
	}

	result, err := api.routesService.RoutePreview(from, to, request.Mode, departureAt)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPreviewResponse(result)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *mapAPI) recommendations(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request recommendationsRequest
		err     error
	)

	query := r.URL.Query()

	from, err := parsePoint(query.Get("from"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("from is required and must be lat,lon"))
		return
	}
	to, err := parsePoint(query.Get("to"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("to is required and must be lat,lon"))
		return
	}
	request.FromLat, request.FromLon = from.Lat, from.Lon
	request.ToLat, request.ToLon = to.Lat, to.Lon
	request.Modes = query["modes[]"]

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	options, err := api.routesService.Recommendations(from, to, request.Modes)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRecommendationsResponse(options)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *mapAPI) runtimeConfig(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	cfg := api.routesService.RuntimeConfig()

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewRuntimeConfigResponse(cfg)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
