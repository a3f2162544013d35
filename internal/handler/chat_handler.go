package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trailmeet/internal/app/chat"
	"trailmeet/internal/app/db"
	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/event"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/metrics"
	"trailmeet/internal/pkg/req"
	"trailmeet/internal/pkg/resp"
)

// HandleListChat returns up to chat.HistoryLimit messages in ascending time.
// Without ?since= it returns the latest messages; with it, those strictly after it.
func HandleListChat(deps *AppDeps) http.HandlerFunc {
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

		var since time.Time
		if raw := r.URL.Query().Get("since"); raw != "" {
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			since = t
		}

		ev, err := db.LoadEvent(r.Context(), deps.Store, eventID)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "chat_list"))
			return
		}
		if err := event.CheckChat(&ev, identity.ID); err != nil {
			resp.RespondError(w, r, eventError(err, "chat_list"))
			return
		}

		var rows []dbc.ChatMessage
		if since.IsZero() {
			rows, err = deps.Store.ListRecentChatMessages(r.Context(), dbc.ListRecentChatMessagesParams{
				EventID: eventID,
				Limit:   chat.HistoryLimit,
			})
		} else {
			rows, err = deps.Store.ListChatMessagesSince(r.Context(), dbc.ListChatMessagesSinceParams{
				EventID:   eventID,
				CreatedAt: db.Timestamptz(since),
				Limit:     chat.HistoryLimit,
			})
		}
		if err != nil {
			resp.RespondError(w, r, eventError(err, "chat_list"))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": chat.FromRows(rows),
		})
	}
}

type SendChatInput struct {
	Message string `json:"message"`
}

// HandleSendChat stores a message from the creator or a participant and pushes
// it to live subscribers.
func HandleSendChat(deps *AppDeps) http.HandlerFunc {
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

		var input SendChatInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		text, err := chat.NormalizeMessage(input.Message)
		if err != nil {
			if errors.Is(err, chat.ErrMessageEmpty) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMessageEmpty))
			} else {
				resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			}
			return
		}

		ev, err := db.LoadEvent(r.Context(), deps.Store, eventID)
		if err != nil {
			resp.RespondError(w, r, eventError(err, "chat_send"))
			return
		}
		if err := event.CheckChat(&ev, identity.ID); err != nil {
			resp.RespondError(w, r, eventError(err, "chat_send"))
			return
		}

		row, err := deps.Store.CreateChatMessage(r.Context(), dbc.CreateChatMessageParams{
			EventID:  eventID,
			UserID:   userUUID,
			UserName: identity.Name,
			Message:  text,
		})
		if err != nil {
			resp.RespondError(w, r, eventError(err, "chat_send"))
			return
		}

		msg := chat.FromRow(row)
		metrics.TrackChatMessage()
		deps.Manager.PublishMessage(msg)
		logx.Debug("Chat message stored", "event_id", msg.EventID, "message_id", msg.ID)

		resp.RespondSuccess(w, r, map[string]any{
			"message": msg,
		})
	}
}
