package handler

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"trailmeet/internal/app/geo"
	"trailmeet/internal/app/geocode"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/metrics"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

// HandleSearchPlaces returns address suggestions for ?q=.
func HandleSearchPlaces(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suggestions, source, err := deps.Geocoder.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			if errors.Is(err, geocode.ErrQueryTooShort) {
				resp.RespondError(w, r, errs.NewError(errs.ErrPlaceQueryTooShort))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrGeocodeUnavailable))
			return
		}

		metrics.TrackGeocode("search", string(source))

		resp.RespondSuccess(w, r, map[string]any{
			"suggestions": suggestions,
			"source":      source,
		})
	}
}

// HandleGeocodePlace resolves ?q= to one coordinate. A miss is reported with
// ErrGeocodeMiss so the client can show a soft warning.
func HandleGeocodePlace(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimSpace(r.URL.Query().Get("q"))
		if address == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		result, err := deps.Geocoder.Forward(r.Context(), address)
		if err != nil {
			if errors.Is(err, geocode.ErrGeocodeMiss) {
				metrics.TrackGeocode("forward", "miss")
				resp.RespondError(w, r, errs.NewError(errs.ErrGeocodeMiss))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrGeocodeUnavailable))
			return
		}

		metrics.TrackGeocode("forward", string(result.Source))

		resp.RespondSuccess(w, r, map[string]any{
			"result": result,
		})
	}
}

// HandleNearestPlace returns the known city closest to ?lat=&lng=.
func HandleNearestPlace(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, customErr := req.QueryFloat(r, "lat")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		lng, customErr := req.QueryFloat(r, "lng")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		at := geo.Coordinates{Lat: lat, Lng: lng}
		if !at.Valid() {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		city, ok := deps.Catalog.NearestCity(at)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrGeocodeMiss))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"city":        city,
			"distance_km": math.Round(geo.DistanceKm(at, city.Coordinates())*10) / 10,
		})
	}
}

// HandlePopularPlaces lists the known-location catalog.
func HandlePopularPlaces(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"places": deps.Catalog.Places(),
		})
	}
}
