package event

import "errors"

// Role is the relation of a viewer to an event.
type Role int

const (
	RoleNonParticipant Role = iota
	RoleParticipant
	RoleCreator
)

func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleParticipant:
		return "participant"
	default:
		return "non_participant"
	}
}

var (
	ErrAlreadyJoined      = errors.New("already joined this event")
	ErrEventFull          = errors.New("event is full")
	ErrNotParticipant     = errors.New("not a participant of this event")
	ErrCreatorCannotJoin  = errors.New("creator cannot join own event")
	ErrCreatorCannotLeave = errors.New("creator cannot leave own event")
	ErrNotCreator         = errors.New("only the creator can delete this event")
	ErrNotActive          = errors.New("event is not active")
	ErrChatDenied         = errors.New("chat is limited to the creator and participants")
	ErrUnauthenticated    = errors.New("authentication required")
)

// RoleOf returns the role of viewerID for e. An empty viewerID is a NonParticipant.
func RoleOf(e *Event, viewerID string) Role {
	switch {
	case viewerID == "":
		return RoleNonParticipant
	case e.CreatedBy == viewerID:
		return RoleCreator
	case e.HasParticipant(viewerID):
		return RoleParticipant
	default:
		return RoleNonParticipant
	}
}

// Capabilities lists the actions available to a viewer.
type Capabilities struct {
	CanJoin   bool `json:"can_join"`
	CanLeave  bool `json:"can_leave"`
	CanDelete bool `json:"can_delete"`
	CanChat   bool `json:"can_chat"`
}

// CapabilitiesOf returns what role may do. Joining needs an authenticated viewer.
func CapabilitiesOf(role Role, authenticated bool) Capabilities {
	switch role {
	case RoleCreator:
		return Capabilities{CanDelete: true, CanChat: true}
	case RoleParticipant:
		return Capabilities{CanLeave: true, CanChat: true}
	default:
		return Capabilities{CanJoin: authenticated}
	}
}

// CheckJoin reports why viewerID may not join e, or nil.
func CheckJoin(e *Event, viewerID string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	switch RoleOf(e, viewerID) {
	case RoleCreator:
		return ErrCreatorCannotJoin
	case RoleParticipant:
		return ErrAlreadyJoined
	}
	if e.Status != StatusActive {
		return ErrNotActive
	}
	if e.IsFull() {
		return ErrEventFull
	}
	return nil
}

// CheckLeave reports why viewerID may not leave e, or nil.
func CheckLeave(e *Event, viewerID string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	switch RoleOf(e, viewerID) {
	case RoleCreator:
		return ErrCreatorCannotLeave
	case RoleNonParticipant:
		return ErrNotParticipant
	}
	return nil
}

// CheckDelete reports why viewerID may not delete e, or nil.
func CheckDelete(e *Event, viewerID string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	if RoleOf(e, viewerID) != RoleCreator {
		return ErrNotCreator
	}
	return nil
}

// CheckChat reports why viewerID may not read or post e's chat, or nil.
func CheckChat(e *Event, viewerID string) error {
	if viewerID == "" {
		return ErrUnauthenticated
	}
	if RoleOf(e, viewerID) == RoleNonParticipant {
		return ErrChatDenied
	}
	return nil
}

// Join adds viewerID to e's participants after CheckJoin passes.
func (e *Event) Join(viewerID string) error {
	if err := CheckJoin(e, viewerID); err != nil {
		return err
	}
	e.Participants = append(e.Participants, viewerID)
	return nil
}

// Leave removes viewerID from e's participants after CheckLeave passes.
func (e *Event) Leave(viewerID string) error {
	if err := CheckLeave(e, viewerID); err != nil {
		return err
	}
	kept := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p != viewerID {
			kept = append(kept, p)
		}
	}
	e.Participants = kept
	return nil
}
