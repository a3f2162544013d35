package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	dbc "trailmeet/internal/app/db/sqlc"
	"trailmeet/internal/app/event"
)

// ParseUUID converts a textual id into a pgtype.UUID. ok is false for malformed ids.
func ParseUUID(id string) (pgtype.UUID, bool) {
	var u pgtype.UUID
	if err := u.Scan(id); err != nil || !u.Valid {
		return pgtype.UUID{}, false
	}
	return u, true
}

func Timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// ToEvent maps a row and its participant ids onto the domain model.
func ToEvent(row dbc.Event, participants []string) event.Event {
	e := event.Event{
		ID:          row.ID.String(),
		Title:       row.Title,
		Description: row.Description,
		EventType:   row.EventType,
		Location: event.Location{
			Lat:     row.Lat,
			Lng:     row.Lng,
			Address: row.Address,
		},
		EventDate:    row.EventDate.Time,
		Participants: participants,
		CreatedBy:    row.CreatedBy.String(),
		CreatedAt:    row.CreatedAt.Time,
		Status:       event.Status(row.Status),
	}
	if e.Participants == nil {
		e.Participants = []string{}
	}
	if row.Capacity.Valid {
		c := int(row.Capacity.Int32)
		e.Capacity = &c
	}
	return e
}

// CreateEventParams maps a validated draft onto the insert parameters.
func CreateEventParams(d event.Draft, createdBy pgtype.UUID) dbc.CreateEventParams {
	arg := dbc.CreateEventParams{
		Title:       d.Title,
		Description: d.Description,
		EventType:   d.EventType,
		Address:     d.Location.Address,
		EventDate:   Timestamptz(d.EventDate),
		CreatedBy:   createdBy,
	}
	if d.Location.Lat != nil {
		arg.Lat = *d.Location.Lat
	}
	if d.Location.Lng != nil {
		arg.Lng = *d.Location.Lng
	}
	if d.Capacity != nil {
		arg.Capacity = pgtype.Int4{Int32: int32(*d.Capacity), Valid: true}
	}
	return arg
}

// LoadEvent fetches one event with its participants.
func LoadEvent(ctx context.Context, q dbc.Querier, id pgtype.UUID) (event.Event, error) {
	row, err := q.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	return withParticipants(ctx, q, row)
}

// LockEvent is LoadEvent with the event row locked for the surrounding transaction.
func LockEvent(ctx context.Context, q dbc.Querier, id pgtype.UUID) (event.Event, error) {
	row, err := q.GetEventForUpdate(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	return withParticipants(ctx, q, row)
}

func withParticipants(ctx context.Context, q dbc.Querier, row dbc.Event) (event.Event, error) {
	events, err := LoadParticipants(ctx, q, []dbc.Event{row})
	if err != nil {
		return event.Event{}, err
	}
	return events[0], nil
}

// LoadParticipants converts rows into domain events with one participant query.
func LoadParticipants(ctx context.Context, q dbc.Querier, rows []dbc.Event) ([]event.Event, error) {
	if len(rows) == 0 {
		return []event.Event{}, nil
	}

	ids := make([]pgtype.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	parts, err := q.ListParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}

	byEvent := make(map[string][]string, len(rows))
	for _, p := range parts {
		key := p.EventID.String()
		byEvent[key] = append(byEvent[key], p.UserID.String())
	}

	events := make([]event.Event, len(rows))
	for i, r := range rows {
		events[i] = ToEvent(r, byEvent[r.ID.String()])
	}
	return events, nil
}
