package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"

	"trailmeet/internal/app/db"
	"trailmeet/internal/app/event"
	"trailmeet/internal/app/eventtype"
	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
)

// EventView is an event as serialized to clients: the stored fields plus the
// derived descriptor, directions link, and the viewer's role and capabilities.
type EventView struct {
	event.Event
	Descriptor       eventtype.Descriptor `json:"descriptor"`
	DirectionsURL    string               `json:"directions_url"`
	ParticipantCount int                  `json:"participant_count"`
	SpotsLeft        *int                 `json:"spots_left,omitempty"`
	ViewerRole       string               `json:"viewer_role"`
	Capabilities     event.Capabilities   `json:"capabilities"`
}

func (d *AppDeps) viewOf(e event.Event, viewerID string) EventView {
	role := event.RoleOf(&e, viewerID)

	v := EventView{
		Event:            e,
		Descriptor:       d.Resolver.Resolve(e.EventType),
		DirectionsURL:    e.Location.DirectionsURL(),
		ParticipantCount: len(e.Participants),
		ViewerRole:       role.String(),
		Capabilities:     event.CapabilitiesOf(role, viewerID != ""),
	}
	if e.Capacity != nil {
		left := e.SpotsLeft()
		v.SpotsLeft = &left
	}
	if e.Status != event.StatusActive {
		v.Capabilities.CanJoin = false
	}
	return v
}

func (d *AppDeps) viewsOf(events []event.Event, viewerID string) []EventView {
	views := make([]EventView, len(events))
	for i, e := range events {
		views[i] = d.viewOf(e, viewerID)
	}
	return views
}

// parseEventID converts a path id into a UUID, reporting a missing event for malformed ids.
func parseEventID(id string) (pgtype.UUID, *errs.CustomError) {
	u, ok := db.ParseUUID(id)
	if !ok {
		return pgtype.UUID{}, errs.NewError(errs.ErrEventNotFound)
	}
	return u, nil
}

// eventError maps domain and storage errors of event operations onto API
// errors. Unexpected errors are logged and reported as ErrUnknown.
func eventError(err error, op string) *errs.CustomError {
	if customErr := mapEventError(err); customErr != nil {
		return customErr
	}

	logx.Error(err, "event operation failed", "op", op)
	return errs.NewError(errs.ErrUnknown)
}

func eventErrorStatus(err error) int {
	if customErr := mapEventError(err); customErr != nil {
		return customErr.Status
	}
	return http.StatusInternalServerError
}

func mapEventError(err error) *errs.CustomError {
	var verr *event.ValidationError
	switch {
	case errors.As(err, &verr):
		return errs.NewError(errs.ErrEventInvalid, verr.Message)
	case db.IsNotFound(err), db.IsForeignKeyViolation(err):
		return errs.NewError(errs.ErrEventNotFound)
	case errors.Is(err, event.ErrUnauthenticated):
		return errs.NewError(errs.ErrUnauthorized)
	case errors.Is(err, event.ErrAlreadyJoined), db.IsUniqueViolation(err):
		return errs.NewError(errs.ErrAlreadyJoined)
	case errors.Is(err, event.ErrEventFull):
		return errs.NewError(errs.ErrEventFull)
	case errors.Is(err, event.ErrNotParticipant):
		return errs.NewError(errs.ErrNotParticipant)
	case errors.Is(err, event.ErrCreatorCannotJoin):
		return errs.NewError(errs.ErrCreatorCannotJoin)
	case errors.Is(err, event.ErrCreatorCannotLeave):
		return errs.NewError(errs.ErrCreatorCannotLeave)
	case errors.Is(err, event.ErrNotCreator):
		return errs.NewError(errs.ErrNotEventCreator)
	case errors.Is(err, event.ErrNotActive):
		return errs.NewError(errs.ErrEventNotActive)
	case errors.Is(err, event.ErrChatDenied):
		return errs.NewError(errs.ErrChatAccessDenied)
	}
	return nil
}
