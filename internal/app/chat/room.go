/*
Package chat contains the core logic for handling real-time chat rooms, user connections, and message broadcasting.

This file defines the Room struct, the push hub of a single event. It manages subscriber
lifecycles (register/unregister/kick), fans pushes out to every subscriber, and shuts
itself down after a period without subscribers.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/logx"
	"trailmeet/internal/pkg/metrics"
)

const broadcastChannelBuffer = 1024

const (
	// RoomInactivityTimeout is the duration after which an empty room will automatically shut down.
	RoomInactivityTimeout = 5 * time.Minute
)

type kickRequest struct {
	userID string
	code   int
	reason string
}

// Room struct represents the live subscribers of one event.
type Room struct {
	// EventID identifies the event the room belongs to.
	EventID string

	// a map of currently connected clients, keyed by their user ID.
	clients map[string]*Client

	// a buffered channel of pushes to be sent to all clients.
	broadcast chan Push

	register   chan *Client
	unregister chan *Client
	kick       chan kickRequest

	// a write-only channel used to notify the Manager to clean up this room.
	cleanupChan chan<- *Room

	// sessions lets clients notice a logout while connected. May be nil.
	sessions jwt.SessionChecker

	stopChan chan struct{}
	stopOnce sync.Once

	inactivity    time.Duration
	shutdownTimer *time.Timer

	// mu protects access to the clients map.
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewRoom creates and initializes a new Room instance.
func NewRoom(eventID string, cleanupChan chan<- *Room, sessions jwt.SessionChecker, inactivity time.Duration) *Room {
	if inactivity <= 0 {
		inactivity = RoomInactivityTimeout
	}

	return &Room{
		EventID:       eventID,
		clients:       make(map[string]*Client),
		broadcast:     make(chan Push, broadcastChannelBuffer),
		register:      make(chan *Client, 16),
		unregister:    make(chan *Client, 16),
		kick:          make(chan kickRequest, 16),
		cleanupChan:   cleanupChan,
		sessions:      sessions,
		stopChan:      make(chan struct{}),
		inactivity:    inactivity,
		shutdownTimer: time.NewTimer(inactivity),
		logger:        logx.Component("Room").With().Str("event_id", eventID).Logger(),
	}
}

// Stop sends a signal to immediately terminate the Room's Run loop.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		r.logger.Info().Msg("Received stop signal. Stopping room immediately.")
		close(r.stopChan)
	})
}

// Done is closed once the room has been asked to stop.
func (r *Room) Done() <-chan struct{} {
	return r.stopChan
}

// Run starts the main event loop for the Room.
func (r *Room) Run() {
	metrics.ChatRoomOpened()

	defer func() {
		r.shutdownTimer.Stop()
		r.Stop()

		r.mu.Lock()
		for id, client := range r.clients {
			client.closeSend()
			delete(r.clients, id)
		}
		r.mu.Unlock()

		metrics.ChatRoomClosed()

		select {
		case r.cleanupChan <- r:
			r.logger.Info().Msg("Sent cleanup notification to Manager.")
		default:
			r.logger.Warn().Msg("Manager cleanup channel full. Skipping cleanup notification.")
		}
	}()

	for {
		select {
		case client := <-r.register:
			r.handleRegister(client)

		case client := <-r.unregister:
			r.handleUnregister(client)

		case req := <-r.kick:
			r.mu.RLock()
			client, ok := r.clients[req.userID]
			r.mu.RUnlock()
			if ok {
				client.Kick(req.code, req.reason)
			}

		case push := <-r.broadcast:
			r.fanOut(push)

		case <-r.shutdownTimer.C:
			r.logger.Info().Msgf("Room inactivity timeout (%s) reached. Shutting down Room.Run() loop.", r.inactivity)
			return

		case <-r.stopChan:
			r.logger.Info().Msg("Room forced stop initiated.")
			return
		}
	}
}

func (r *Room) handleRegister(client *Client) {
	r.mu.Lock()

	if existing, ok := r.clients[client.member.ID]; ok {
		r.logger.Warn().
			Str("client_id", client.member.ID).
			Msg("Client ID already connected. Closing old connection for replacement.")

		existing.Kick(WsCloseCodeSessionKicked, "Session replaced by new connection. Check other tabs.")
	}

	if r.shutdownTimer.Stop() {
		select {
		case <-r.shutdownTimer.C:
		default:
		}
	}

	r.clients[client.member.ID] = client

	online := make([]Member, 0, len(r.clients))
	for _, c := range r.clients {
		online = append(online, c.member)
	}

	r.logger.Info().
		Str("client_id", client.member.ID).
		Int("total_users", len(r.clients)).
		Msg("Client joined room.")

	r.mu.Unlock()

	initMsg, err := NewPush(TypeInitData, r.EventID, InitDataPayload{
		Member:  client.member,
		Online:  online,
		EventID: r.EventID,
	})
	if err != nil || client.sendPush(initMsg) != nil {
		r.handleUnregister(client)
		return
	}

	if msg, err := NewPush(TypeMemberOnline, r.EventID, client.member); err == nil {
		r.fanOut(msg)
	}
}

func (r *Room) handleUnregister(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[client.member.ID]
	if !ok || current != client {
		r.logger.Debug().Str("client_id", client.member.ID).Msg("Ignoring unregister for stale connection.")
		return
	}

	delete(r.clients, client.member.ID)
	client.closeSend()

	r.logger.Info().
		Str("client_id", client.member.ID).
		Int("total_users", len(r.clients)).
		Msg("Client left room.")

	if msg, err := NewPush(TypeMemberOffline, r.EventID, client.member); err == nil {
		r.fanOutLocked(msg)
	}

	if len(r.clients) == 0 {
		r.logger.Info().Msg("Room is empty. Starting inactivity timer.")
		r.shutdownTimer.Reset(r.inactivity)
	}
}

func (r *Room) fanOut(push Push) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.fanOutLocked(push)
}

// fanOutLocked requires r.mu to be held.
func (r *Room) fanOutLocked(push Push) {
	messageBytes, err := json.Marshal(push)
	if err != nil {
		r.logger.Error().Str("push_id", push.ID).Err(err).Msg("Error marshaling push for broadcast.")
		return
	}

	for _, client := range r.clients {
		select {
		case client.send <- messageBytes:
		default:
			r.logger.Warn().Str("client_id", client.member.ID).Msg("Client send channel full, kicking.")
			client.Kick(WsCloseCodeSlowConsumer, "Too many pending messages.")
		}
	}
}

// RegisterClient queues a client for registration. It returns false when the room has stopped.
func (r *Room) RegisterClient(client *Client) bool {
	select {
	case r.register <- client:
		return true
	case <-r.stopChan:
		return false
	}
}

func (r *Room) unregisterClient(client *Client) {
	select {
	case r.unregister <- client:
	case <-r.stopChan:
	}
}

// Publish queues push for every subscriber. Pushes to a stopped or saturated room are dropped.
func (r *Room) Publish(push Push) {
	select {
	case <-r.stopChan:
		return
	default:
	}

	select {
	case r.broadcast <- push:
	default:
		r.logger.Warn().Str("type", string(push.Type)).Msg("Broadcast channel full. Dropping push.")
	}
}

// Disconnect closes the connection of userID, if connected.
func (r *Room) Disconnect(userID string, code int, reason string) {
	select {
	case r.kick <- kickRequest{userID: userID, code: code, reason: reason}:
	case <-r.stopChan:
	default:
		r.logger.Warn().Str("client_id", userID).Msg("Kick channel full. Skipping disconnect.")
	}
}

// Online returns the number of connected subscribers.
func (r *Room) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
