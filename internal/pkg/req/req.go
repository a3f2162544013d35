/*
Package req binds request bodies and query parameters for the handlers.

Binding failures come back as *errs.CustomError so handlers can pass them
straight to resp.RespondError.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"trailmeet/internal/pkg/errs"
)

// MaxJSONBodySize caps JSON request bodies at 64 KB; event descriptions are at most 2000 characters.
const MaxJSONBodySize int64 = 64 << 10

// BindJSON decodes the JSON request body into dst, rejecting unknown fields and trailing content.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// QueryFloat parses the named query parameter as a float64.
func QueryFloat(r *http.Request, name string) (float64, *errs.CustomError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}

	return v, nil
}
