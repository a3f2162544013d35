/*
Package handler provides the HTTP handlers and routing of the TrailMeet server.

This file covers the event resources: listing with type filter and counts, detail,
creation, deletion, membership changes, the viewer's own events, and the
calendar export.
*/
package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"trailmeet/internal/app/calendar"
	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/db"
	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/event"
	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/metrics"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

const (
	// ListLimit caps GET /api/events.
	ListLimit = 100

	// MyEventsLimit caps GET /api/my-events.
	MyEventsLimit = 200
)

// viewerID returns the authenticated user id, or "" for anonymous requests.
func viewerID(r *http.Request) string {
	if identity := jwt.GetPayloadFromContext(r); identity != nil {
		return identity.ID
	}
	return ""
}

// requireUser returns the identity and its UUID, or responds 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*jwt.Payload, pgtype.UUID, bool) {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil, pgtype.UUID{}, false
	}

	userUUID, ok := db.ParseUUID(identity.ID)
	if !ok {
		logx.Warn("Identity carries a malformed user id", "id", identity.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return nil, pgtype.UUID{}, false
	}

	return identity, userUUID, true
}

// HandleListEvents returns the active events matching ?type= together with the
// type list and per-type counts computed over all active events.
func HandleListEvents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected := r.URL.Query().Get("type")
		if selected == "" {
			selected = event.AllTypes
		}

		rows, err := deps.Store.ListActiveEvents(r.Context(), ListLimit)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "list"))
			return
		}

		all, err := db.LoadParticipants(r.Context(), deps.Store, rows)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "list"))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"events":   deps.viewsOf(event.Filter(all, selected), viewerID(r)),
			"selected": selected,
			"types":    event.AvailableTypes(all),
			"counts":   event.CountByType(all),
		})
	}
}

// HandleGetEvent returns one event with the viewer's role.
func HandleGetEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, customErr := parseEventID(chi.URLParam(r, "id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ev, err := db.LoadEvent(r.Context(), deps.Store, eventID)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "get"))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"event": deps.viewOf(ev, viewerID(r)),
		})
	}
}

// HandleCreateEvent validates a draft and stores it with the caller as creator.
func HandleCreateEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userUUID, ok := requireUser(w, r)
		if !ok {
			return
		}

		var draft event.Draft
		if customErr := req.BindJSON(w, r, &draft); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := draft.Validate(deps.now()); err != nil {
			resp.RespondError(w, r, eventError(err, "create"))
			return
		}

		row, err := deps.Store.CreateEvent(r.Context(), db.CreateEventParams(draft.Normalized(), userUUID))
		if err != nil {
			resp.RespondError(w, r, eventError(err, "create"))
			return
		}

		ev := db.ToEvent(row, nil)
		logx.Info("Event created", "event_id", ev.ID, "user_id", identity.ID, "event_type", ev.EventType)

		resp.RespondSuccess(w, r, map[string]any{
			"event": deps.viewOf(ev, identity.ID),
		})
	}
}

// HandleDeleteEvent removes an event and, by cascade, its participants and chat.
// Only the creator may delete.
func HandleDeleteEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, _, ok := requireUser(w, r)
		if !ok {
			return
		}

		eventID, customErr := parseEventID(chi.URLParam(r, "id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		err := deps.Store.ExecTx(r.Context(), func(q dbc.Querier) error {
			ev, err := db.LockEvent(r.Context(), q, eventID)
			if err != nil {
				return err
			}
			if err := event.CheckDelete(&ev, identity.ID); err != nil {
				return err
			}
			n, err := q.DeleteEvent(r.Context(), eventID)
			if err != nil {
				return err
			}
			if n == 0 {
				return pgx.ErrNoRows
			}
			return nil
		})
		trackMembership("delete", err)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "delete"))
			return
		}

		id := eventID.String()
		deps.Manager.CloseRoom(id)
		logx.Info("Event deleted", "event_id", id, "user_id", identity.ID)

		resp.RespondSuccess(w, r, map[string]any{"id": id})
	}
}

// HandleJoinEvent adds the caller to the participants under a row lock, so
// capacity holds under concurrent joins.
func HandleJoinEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userUUID, ok := requireUser(w, r)
		if !ok {
			return
		}

		eventID, customErr := parseEventID(chi.URLParam(r, "id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ev, err := changeMembership(r.Context(), deps.Store, eventID, func(ev *event.Event, q dbc.Querier) error {
			if err := ev.Join(identity.ID); err != nil {
				return err
			}
			return q.AddParticipant(r.Context(), dbc.AddParticipantParams{EventID: eventID, UserID: userUUID})
		})
		trackMembership("join", err)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "join"))
			return
		}

		deps.Manager.Publish(ev.ID, chat.TypeParticipantJoined, chat.ParticipantPayload{UserID: identity.ID})

		resp.RespondSuccess(w, r, map[string]any{
			"event": deps.viewOf(ev, identity.ID),
		})
	}
}

// HandleLeaveEvent removes the caller from the participants. The creator cannot leave.
func HandleLeaveEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userUUID, ok := requireUser(w, r)
		if !ok {
			return
		}

		eventID, customErr := parseEventID(chi.URLParam(r, "id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ev, err := changeMembership(r.Context(), deps.Store, eventID, func(ev *event.Event, q dbc.Querier) error {
			if err := ev.Leave(identity.ID); err != nil {
				return err
			}
			n, err := q.RemoveParticipant(r.Context(), dbc.RemoveParticipantParams{EventID: eventID, UserID: userUUID})
			if err != nil {
				return err
			}
			if n == 0 {
				return event.ErrNotParticipant
			}
			return nil
		})
		trackMembership("leave", err)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "leave"))
			return
		}

		deps.Manager.Publish(ev.ID, chat.TypeParticipantLeft, chat.ParticipantPayload{UserID: identity.ID})
		deps.Manager.Disconnect(ev.ID, identity.ID)

		resp.RespondSuccess(w, r, map[string]any{
			"event": deps.viewOf(ev, identity.ID),
		})
	}
}

// changeMembership locks the event, applies fn to the domain model and the
// transaction, and returns the event as it stands after fn.
func changeMembership(ctx context.Context, store db.Store, eventID pgtype.UUID, fn func(*event.Event, dbc.Querier) error) (event.Event, error) {
	var result event.Event
	err := store.ExecTx(ctx, func(q dbc.Querier) error {
		ev, err := db.LockEvent(ctx, q, eventID)
		if err != nil {
			return err
		}
		if err := fn(&ev, q); err != nil {
			return err
		}
		result = ev
		return nil
	})
	return result, err
}

func trackMembership(op string, err error) {
	status := "ok"
	if err != nil {
		status = "rejected"
		if eventErrorStatus(err) >= http.StatusInternalServerError {
			status = "error"
		}
	}
	metrics.TrackMembership(op, status)
}

// HandleMyEvents returns every event the caller created or joined, any status.
func HandleMyEvents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, userUUID, ok := requireUser(w, r)
		if !ok {
			return
		}

		rows, err := deps.Store.ListEventsForUser(r.Context(), dbc.ListEventsForUserParams{
			CreatedBy: userUUID,
			Limit:     MyEventsLimit,
		})
		if err != nil {
			resp.RespondError(w, r, eventError(err, "my_events"))
			return
		}

		events, err := db.LoadParticipants(r.Context(), deps.Store, rows)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "my_events"))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"events": deps.viewsOf(events, identity.ID),
		})
	}
}

// HandleEventCalendar serves the event as an .ics attachment.
func HandleEventCalendar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, customErr := parseEventID(chi.URLParam(r, "id"))
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ev, err := db.LoadEvent(r.Context(), deps.Store, eventID)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "calendar"))
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", calendar.Filename(ev)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(calendar.Export(ev, deps.now())))
	}
}
