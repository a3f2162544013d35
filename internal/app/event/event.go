/*
Package event holds the TrailMeet event model and the rules around it:
type filtering and counting, the per-viewer membership state machine, and
draft validation shared by the server and the client SDK.
*/
package event

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Status is the lifecycle state of an event.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Location is a point on the map with its human-readable address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// DirectionsURL returns a Google Maps directions link to the location.
func (l Location) DirectionsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s,%s",
		strconv.FormatFloat(l.Lat, 'f', -1, 64),
		strconv.FormatFloat(l.Lng, 'f', -1, 64),
	)
}

// Event is a user-created meetup.
//
// Participants never contains CreatedBy; the creator is a separate role.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	EventType    string    `json:"event_type"`
	Location     Location  `json:"location"`
	EventDate    time.Time `json:"event_date"`
	Capacity     *int      `json:"capacity,omitempty"`
	Participants []string  `json:"participants"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	Status       Status    `json:"status"`
}

// HasParticipant reports whether userID has joined e.
func (e *Event) HasParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// IsFull reports whether a capacity is set and reached.
func (e *Event) IsFull() bool {
	return e.Capacity != nil && len(e.Participants) >= *e.Capacity
}

// SpotsLeft returns the remaining places, or -1 when the event has no capacity.
func (e *Event) SpotsLeft() int {
	if e.Capacity == nil {
		return -1
	}
	return max(*e.Capacity-len(e.Participants), 0)
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	c := e
	c.Participants = slices.Clone(e.Participants)
	if e.Capacity != nil {
		v := *e.Capacity
		c.Capacity = &v
	}
	return c
}
