/*
Package chat holds the event chat: the message model and its validation, and
the push hub that fans new messages out to WebSocket subscribers.

Polling GET /api/events/{id}/chat stays the contract. The hub is an upgrade
path: one Room per event with live subscribers, created on first connect and
shut down after a period without clients.
*/
package chat

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	dbc "trailmeet/internal/app/db/sqlc"
)

const (
	// MaxMessageLength is the upper bound in characters for a chat message.
	MaxMessageLength = 1000

	// HistoryLimit caps a single chat listing.
	HistoryLimit = 100
)

var (
	ErrMessageEmpty   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds 1000 characters")
)

// Message is a persisted chat line. It belongs to exactly one event and is immutable.
type Message struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizeMessage trims text and checks its length.
func NormalizeMessage(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return text, nil
}

func FromRow(row dbc.ChatMessage) Message {
	return Message{
		ID:        row.ID.String(),
		EventID:   row.EventID.String(),
		UserID:    row.UserID.String(),
		UserName:  row.UserName,
		Message:   row.Message,
		Timestamp: row.CreatedAt.Time,
	}
}

func FromRows(rows []dbc.ChatMessage) []Message {
	msgs := make([]Message, len(rows))
	for i, row := range rows {
		msgs[i] = FromRow(row)
	}
	return msgs
}

// Member is a connected subscriber as shown to the other subscribers.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PushType names a frame sent over the WebSocket.
type PushType string

const (
	TypeInitData          PushType = "INIT_DATA"
	TypeChatMessage       PushType = "CHAT_MESSAGE"
	TypeParticipantJoined PushType = "PARTICIPANT_JOINED"
	TypeParticipantLeft   PushType = "PARTICIPANT_LEFT"
	TypeMemberOnline      PushType = "MEMBER_ONLINE"
	TypeMemberOffline     PushType = "MEMBER_OFFLINE"
	TypeEventDeleted      PushType = "EVENT_DELETED"
	TypeError             PushType = "ERROR"
)

// Push is the frame written to subscribers.
type Push struct {
	ID        string          `json:"id"`
	Type      PushType        `json:"type"`
	EventID   string          `json:"event_id"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// InitDataPayload is sent once to a newly registered subscriber.
type InitDataPayload struct {
	Member  Member   `json:"member"`
	Online  []Member `json:"online"`
	EventID string   `json:"event_id"`
}

// ParticipantPayload announces a membership change.
type ParticipantPayload struct {
	UserID string `json:"user_id"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewPush builds a frame with a fresh id and the current time.
func NewPush(t PushType, eventID string, payload any) (Push, error) {
	push := Push{
		ID:        uuid.NewString(),
		Type:      t,
		EventID:   eventID,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Push{}, err
		}
		push.Payload = raw
	}
	return push, nil
}
