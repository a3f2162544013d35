/*
Package chat contains the core logic for handling real-time chat rooms, user connections, and message broadcasting.

This file defines the Manager struct, which tracks one Room per event with live subscribers.
Rooms are created on first subscription and removed when they shut down.
*/
package chat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trailmeet/internal/pkg/auth/jwt"
	"trailmeet/internal/pkg/logx"
)

// Manager struct is responsible for coordinating and managing all active rooms.
type Manager struct {
	// rooms stores a map of all Room instances, keyed by event ID.
	rooms map[string]*Room

	sessions   jwt.SessionChecker
	inactivity time.Duration

	// mu protects concurrent access to the rooms map.
	mu sync.RWMutex

	// the channel used by Rooms to notify the Manager to clean up and remove them.
	cleanup chan *Room

	// quit stops the cleanup loop. cleanup itself is never closed since rooms
	// may still report in after Shutdown.
	quit   chan struct{}
	closed bool

	// wg is used to wait for the runCleanupLoop goroutine to finish during shutdown.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewManager constructs and returns a new Manager instance. sessions may be nil.
func NewManager(sessions jwt.SessionChecker) *Manager {
	m := &Manager{
		rooms:      make(map[string]*Room),
		sessions:   sessions,
		inactivity: RoomInactivityTimeout,
		cleanup:    make(chan *Room, 64),
		quit:       make(chan struct{}),
		logger:     logx.Component("Manager"),
	}

	m.wg.Add(1)

	go m.runCleanupLoop()

	return m
}

func (m *Manager) runCleanupLoop() {
	defer m.wg.Done()

	m.logger.Info().Msg("Cleanup loop started.")

	for {
		select {
		case room := <-m.cleanup:
			m.deleteRoom(room)
		case <-m.quit:
			m.logger.Info().Msg("Cleanup loop stopped.")
			return
		}
	}
}

// deleteRoom removes room unless a newer room already replaced it.
func (m *Manager) deleteRoom(room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.rooms[room.EventID]; ok && current == room {
		delete(m.rooms, room.EventID)
		m.logger.Info().Str("event_id", room.EventID).Msg("Room successfully removed.")
	}
}

// Room returns the running room of eventID, starting one if needed.
// It returns nil after Shutdown.
func (m *Manager) Room(eventID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	if room, ok := m.rooms[eventID]; ok {
		select {
		case <-room.Done():
		default:
			return room
		}
	}

	room := NewRoom(eventID, m.cleanup, m.sessions, m.inactivity)
	m.rooms[eventID] = room

	go room.Run()

	m.logger.Info().Str("event_id", eventID).Msg("New Room created and started.")
	return room
}

// GetRoom retrieves the running room of eventID without creating one.
func (m *Manager) GetRoom(eventID string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[eventID]
	if !ok {
		return nil
	}
	select {
	case <-room.Done():
		return nil
	default:
		return room
	}
}

// Publish builds a push and hands it to the event's room. Events without
// subscribers have no room and the push is dropped.
func (m *Manager) Publish(eventID string, t PushType, payload any) {
	room := m.GetRoom(eventID)
	if room == nil {
		return
	}

	push, err := NewPush(t, eventID, payload)
	if err != nil {
		m.logger.Error().Err(err).Str("type", string(t)).Msg("Failed to build push.")
		return
	}
	room.Publish(push)
}

// PublishMessage pushes a stored chat message to the event's subscribers.
func (m *Manager) PublishMessage(msg Message) {
	m.Publish(msg.EventID, TypeChatMessage, msg)
}

// Disconnect drops userID from the event's room, e.g. after leaving the event.
func (m *Manager) Disconnect(eventID, userID string) {
	if room := m.GetRoom(eventID); room != nil {
		room.Disconnect(userID, WsCloseCodeAccessRevoked, "No longer a member of this event.")
	}
}

// CloseRoom announces the deletion of eventID and stops its room.
func (m *Manager) CloseRoom(eventID string) {
	room := m.GetRoom(eventID)
	if room == nil {
		return
	}

	push, err := NewPush(TypeEventDeleted, eventID, nil)
	if err == nil {
		room.fanOut(push)
	}
	room.Stop()
}

// RoomCount returns the number of running rooms.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Shutdown stops all rooms and waits for the cleanup goroutine to exit.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down Manager cleanup loop...")

	m.mu.Lock()
	m.closed = true
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}

	close(m.quit)
	m.wg.Wait()

	m.logger.Info().Msg("Manager shutdown complete.")
}
