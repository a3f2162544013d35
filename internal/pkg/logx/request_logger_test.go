package logx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"203.0.113.42:5000":      "203.0.113.0",
		"198.51.100.7":           "198.51.100.0",
		"127.0.0.1:8080":         "127.0.0.1",
		"[2001:db8:1:2::99]:443": "2001:db8:1:2::",
		"not-an-ip":              "unknown_ip",
	}

	for in, want := range cases {
		assert.Equal(t, want, anonymizeIP(in), in)
	}
}

func captureLog(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(level)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestLogger_RecordsRoute(t *testing.T) {
	buf := captureLog(t, zerolog.InfoLevel)

	r := chi.NewRouter()
	r.Use(RequestLogger())
	r.Get("/api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/events/abc", nil)
	req.RemoteAddr = "203.0.113.42:5000"
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	assert.Equal(t, "http", inner["component"])

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/api/events/{id}", entry["route"])
	assert.Equal(t, "/api/events/abc", entry["path"])
	assert.Equal(t, "203.0.113.0", entry["remote_ip"])
	assert.EqualValues(t, 404, entry["status"])
}

func TestRequestLogger_QuietHealth(t *testing.T) {
	buf := captureLog(t, zerolog.InfoLevel)

	r := chi.NewRouter()
	r.Use(RequestLogger())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())
}
