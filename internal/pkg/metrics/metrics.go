/*
Package metrics registers the Prometheus collectors of the TrailMeet server and
exposes the HTTP middleware and scrape handler around them.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmeet_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trailmeet_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	geocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmeet_geocode_lookups_total",
			Help: "Geocoding lookups by operation and the source that answered",
		},
		[]string{"operation", "source"},
	)

	membershipOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailmeet_membership_operations_total",
			Help: "Join, leave and delete operations by outcome",
		},
		[]string{"operation", "status"},
	)

	chatMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trailmeet_chat_messages_total",
			Help: "Chat messages accepted",
		},
	)

	chatRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trailmeet_chat_rooms_active",
			Help: "Chat push rooms currently running",
		},
	)

	eventsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trailmeet_events_completed_total",
			Help: "Events moved to completed by the sweep job",
		},
	)
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency labelled with the chi route pattern,
// so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// TrackGeocode counts a search or forward lookup answered by source
// ("cache", "nominatim", "catalog", "city" or "miss").
func TrackGeocode(operation, source string) {
	geocodeLookups.WithLabelValues(operation, source).Inc()
}

// TrackMembership counts a join, leave or delete with its outcome.
func TrackMembership(operation, status string) {
	membershipOperations.WithLabelValues(operation, status).Inc()
}

// TrackChatMessage counts one accepted chat message.
func TrackChatMessage() {
	chatMessages.Inc()
}

// ChatRoomOpened increments the active room gauge.
func ChatRoomOpened() {
	chatRooms.Inc()
}

// ChatRoomClosed decrements the active room gauge.
func ChatRoomClosed() {
	chatRooms.Dec()
}

// TrackEventsCompleted adds n to the completed events counter.
func TrackEventsCompleted(n int64) {
	eventsCompleted.Add(float64(n))
}
