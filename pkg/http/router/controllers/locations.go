package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/routeview/mapkit/pkg/geo"
)

func (api *mapAPI) suggestLocations(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()

	q := query.Get("q")
	if q == "" {
		api.BadRequestResponse(w, r, errors.New("q is required"))
		return
	}

	limit := 10
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.BadRequestResponse(w, r, errors.New("limit must be a positive int"))
			return
		}
		limit = parsed
	}

	var near *geo.Coordinate
	if raw := query.Get("near"); raw != "" {
		point, err := parsePoint(raw)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("near must be lat,lon"))
			return
		}
		near = &point
	}

	places, err := api.locationsService.Suggest(q, near, limit)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewSuggestionsResponse(places)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *mapAPI) reverseGeocode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request reverseRequest
		err     error
	)

	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}

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

	place, err := api.locationsService.Reverse(geo.NewCoordinate(request.Lat, request.Lon))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPlaceResponse(place)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
