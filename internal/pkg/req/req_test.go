package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmeet/internal/pkg/errs"
)

type sample struct {
	Title string `json:"title"`
}

func newJSONRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestBindJSON(t *testing.T) {
	var dst sample
	customErr := BindJSON(httptest.NewRecorder(), newJSONRequest(`{"title":"Sunrise hike"}`), &dst)

	require.Nil(t, customErr)
	assert.Equal(t, "Sunrise hike", dst.Title)
}

func TestBindJSON_Rejections(t *testing.T) {
	cases := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"unknown field", newJSONRequest(`{"title":"x","extra":1}`), errs.ErrInvalidJSONFormat},
		{"trailing content", newJSONRequest(`{"title":"x"} {"title":"y"}`), errs.ErrExtraContentInBody},
		{"wrong content type", httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), errs.ErrUnsupportedMediaType},
		{"too large", newJSONRequest(`{"title":"` + strings.Repeat("a", int(MaxJSONBodySize)) + `"}`), errs.ErrRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst sample
			customErr := BindJSON(httptest.NewRecorder(), tc.req, &dst)
			require.NotNil(t, customErr)
			assert.Equal(t, tc.code, customErr.Code)
		})
	}
}

func TestQueryFloat(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?lat=19.0760&lng=abc", nil)

	lat, customErr := QueryFloat(r, "lat")
	require.Nil(t, customErr)
	assert.Equal(t, 19.0760, lat)

	_, customErr = QueryFloat(r, "lng")
	require.NotNil(t, customErr)

	_, customErr = QueryFloat(r, "missing")
	require.NotNil(t, customErr)
}
