/*
Package handler provides the HTTP handlers and routing setup for the TrailMeet server.

This file defines the main Router, applying middleware like logging, CORS, metrics
and IP-based rate limiting before delegating requests to the API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/limiter"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/metrics"
	"trailmeet/internal/pkg/pow"
	"trailmeet/internal/pkg/resp"
)

const (
	CreateRate  = 0.05
	CreateBurst = 5
	JoinRate    = 0.5
	JoinBurst   = 10
	ChatRate    = 1
	ChatBurst   = 10
	PlacesRate  = 2
	PlacesBurst = 10
	WsRate      = 0.2
	WsBurst     = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	createLimiter := limiter.NewIPRateLimiter("create", rate.Limit(CreateRate), CreateBurst)
	joinLimiter := limiter.NewIPRateLimiter("membership", rate.Limit(JoinRate), JoinBurst)
	chatLimiter := limiter.NewIPRateLimiter("chat", rate.Limit(ChatRate), ChatBurst)
	placesLimiter := limiter.NewIPRateLimiter("places", rate.Limit(PlacesRate), PlacesBurst)
	wsLimiter := limiter.NewIPRateLimiter("ws", rate.Limit(WsRate), WsBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", pow.TokenHeaderKey},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "TrailMeet Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret, deps.Sessions))

		api.Route("/pow", func(p chi.Router) {
			p.Get("/challenge", HandlePowChallenge(deps))
			p.Post("/verify", HandlePowVerify(deps))
		})

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/session", HandleDemoSession(deps))
			auth.With(createLimiter.Middleware).Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Get("/me", HandleMe(deps))
			auth.Post("/logout", HandleLogout(deps))
		})

		api.Route("/user", func(user chi.Router) {
			user.Post("/profile", HandleUpdateUserProfile(deps))
			user.Post("/avatar/presign", HandlePresignAvatar(deps))
		})

		api.Route("/events", func(events chi.Router) {
			events.Get("/", HandleListEvents(deps))
			events.With(createLimiter.Middleware).Post("/", HandleCreateEvent(deps))

			events.Route("/{id}", func(ev chi.Router) {
				ev.Get("/", HandleGetEvent(deps))
				ev.Delete("/", HandleDeleteEvent(deps))
				ev.Get("/calendar.ics", HandleEventCalendar(deps))

				ev.With(joinLimiter.Middleware).Post("/join", HandleJoinEvent(deps))
				ev.With(joinLimiter.Middleware).Delete("/leave", HandleLeaveEvent(deps))

				ev.Get("/chat", HandleListChat(deps))
				ev.With(chatLimiter.Middleware).Post("/chat", HandleSendChat(deps))
			})
		})

		api.Get("/my-events", HandleMyEvents(deps))

		api.Route("/event-types", func(types chi.Router) {
			types.Get("/", HandleListEventTypes(deps))
			types.Get("/resolve", HandleResolveEventType(deps))
		})

		api.Route("/places", func(places chi.Router) {
			places.Use(placesLimiter.Middleware)
			places.Get("/search", HandleSearchPlaces(deps))
			places.Get("/geocode", HandleGeocodePlace(deps))
			places.Get("/nearest", HandleNearestPlace(deps))
			places.Get("/popular", HandlePopularPlaces(deps))
		})
	})

	r.Get("/ws/events/{id}", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
