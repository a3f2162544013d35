package event

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxEventTypeLength   = 100
	MaxAddressLength     = 500
	MinCapacity          = 1
	MaxCapacity          = 1000
)

// ValidationError names the first draft field that failed and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DraftLocation is the location part of a Draft. Lat and Lng are pointers so
// that a missing coordinate is distinguishable from 0.
type DraftLocation struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
}

// Draft is an event as submitted for creation.
type Draft struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	EventType   string        `json:"event_type"`
	Location    DraftLocation `json:"location"`
	EventDate   time.Time     `json:"event_date"`
	Capacity    *int          `json:"capacity,omitempty"`
}

// Normalized returns d with surrounding whitespace trimmed from its text fields.
func (d Draft) Normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.EventType = strings.TrimSpace(d.EventType)
	d.Location.Address = strings.TrimSpace(d.Location.Address)
	return d
}

// Validate checks d against the creation rules, in form order, and returns the
// first failure as a *ValidationError.
func (d Draft) Validate(now time.Time) error {
	d = d.Normalized()

	switch {
	case d.Title == "":
		return invalid("title", "Event title is required")
	case utf8.RuneCountInString(d.Title) > MaxTitleLength:
		return invalid("title", fmt.Sprintf("Event title must be at most %d characters", MaxTitleLength))
	case d.Description == "":
		return invalid("description", "Event description is required")
	case utf8.RuneCountInString(d.Description) > MaxDescriptionLength:
		return invalid("description", fmt.Sprintf("Event description must be at most %d characters", MaxDescriptionLength))
	case d.EventType == "":
		return invalid("event_type", "Event type is required")
	case utf8.RuneCountInString(d.EventType) > MaxEventTypeLength:
		return invalid("event_type", fmt.Sprintf("Event type must be at most %d characters", MaxEventTypeLength))
	case d.Location.Address == "":
		return invalid("location", "Event location is required")
	case utf8.RuneCountInString(d.Location.Address) > MaxAddressLength:
		return invalid("location", fmt.Sprintf("Event location must be at most %d characters", MaxAddressLength))
	case d.Location.Lat == nil || d.Location.Lng == nil:
		return invalid("location", "Please wait for location to be validated or enter a valid address")
	case *d.Location.Lat < -90 || *d.Location.Lat > 90 || *d.Location.Lng < -180 || *d.Location.Lng > 180:
		return invalid("location", "Event coordinates are out of range")
	case d.EventDate.IsZero():
		return invalid("event_date", "Event date and time is required")
	case d.EventDate.Before(now):
		return invalid("event_date", "Event date must be in the future")
	case d.Capacity != nil && (*d.Capacity < MinCapacity || *d.Capacity > MaxCapacity):
		return invalid("capacity", fmt.Sprintf("Capacity must be between %d and %d", MinCapacity, MaxCapacity))
	}

	return nil
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// ToEvent builds an active Event from a validated draft.
func (d Draft) ToEvent(id, createdBy string, createdAt time.Time) Event {
	d = d.Normalized()

	e := Event{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		EventType:   d.EventType,
		Location: Location{
			Address: d.Location.Address,
		},
		EventDate:    d.EventDate,
		Participants: []string{},
		CreatedBy:    createdBy,
		CreatedAt:    createdAt,
		Status:       StatusActive,
	}
	if d.Location.Lat != nil {
		e.Location.Lat = *d.Location.Lat
	}
	if d.Location.Lng != nil {
		e.Location.Lng = *d.Location.Lng
	}
	if d.Capacity != nil {
		c := *d.Capacity
		e.Capacity = &c
	}
	return e
}
