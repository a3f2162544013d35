/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which rate limits, authenticates the query token,
checks chat access to the event, upgrades the connection, and starts the subscriber lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/db"
	"trailmeet/internal/app/event"
	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/limiter"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc for /ws/events/{id}?token=.
// Browsers cannot set headers on the upgrade request, so the session token
// travels in the query string.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", limiter.ClientIP(r))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		eventID, customErr := parseEventID(chi.URLParam(r, "id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			token = jwt.BearerToken(r)
		}

		payload, err := jwt.Authenticate(r.Context(), token, deps.Config.JWTSecret, deps.Sessions)
		if err != nil {
			logx.Warn("WebSocket request rejected: invalid session token", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		ev, err := db.LoadEvent(r.Context(), deps.Store, eventID)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "ws"))
			return
		}

		if err := event.CheckChat(&ev, payload.ID); err != nil {
			logx.Info("WebSocket connection rejected: no chat access.", "event_id", ev.ID, "user_id", payload.ID)
			resp.RespondError(w, r, eventError(err, "ws"))
			return
		}

		room := deps.Manager.Room(ev.ID)
		if room == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Attempting to upgrade connection", "event_id", ev.ID, "user_id", payload.ID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := chat.NewClient(room, conn, chat.Member{ID: payload.ID, Name: payload.Name}, payload.SessionID())

		go client.WritePump()

		if !room.RegisterClient(client) {
			logx.Info("Room stopped before registration", "event_id", ev.ID)
			client.Kick(websocket.CloseGoingAway, "Event chat closed.")
			return
		}

		logx.Info("WebSocket connection established and client registered", "client_id", payload.ID, "event_id", ev.ID)

		client.ReadPump()
	}
}
