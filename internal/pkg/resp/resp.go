/*
Package resp writes the JSON envelope every API response uses.

The envelope holds a business code (0 on success), a message, and an optional
data payload. Clients branch on the code; HTTP status is secondary.
*/
package resp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
)

// RetryAfterSeconds is advertised with rate-limited responses.
const RetryAfterSeconds = 10

// JSONResponse is the standard response envelope.
type JSONResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON encodes payload and writes it with httpStatus, marked uncacheable.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus, "path", r.URL.Path)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")

	w.WriteHeader(httpStatus)
	_, _ = w.Write(body)
}

// RespondSuccess sends data with code 0 and HTTP 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{Code: 0, Message: "success", Data: data})
}

// RespondError sends the code, message and status of customErr. A nil error
// is reported as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}
	if customErr.Code == errs.ErrRateLimitExceeded {
		w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{Code: customErr.Code, Message: customErr.Message})
}
