/*
Package chat contains the core logic for handling real-time chat rooms, user connections, and message broadcasting.

This file defines the Client struct, representing an active WebSocket subscriber. Subscribers
are read-only: messages are posted over HTTP, so inbound frames other than control frames are
discarded. ReadPump and WritePump own the connection for its lifetime.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trailmeet/internal/pkg/errs"
	"trailmeet/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 1024

	sendBuffer = 256

	// WsCloseCodeSessionKicked signals that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001

	// WsCloseCodeSessionRevoked signals that the session was logged out.
	WsCloseCodeSessionRevoked = 4002

	// WsCloseCodeAccessRevoked signals that the user left the event or the event is gone.
	WsCloseCodeAccessRevoked = 4003

	// WsCloseCodeSlowConsumer signals that the client fell too far behind.
	WsCloseCodeSlowConsumer = 4004
)

var errSendQueueFull = errors.New("client send queue full")

// Client struct represents an active WebSocket connection and its associated member.
type Client struct {
	room *Room
	conn *websocket.Conn

	member Member

	// sessionID is checked against the room's session registry on every ping.
	sessionID string

	// a buffered channel used to queue frames waiting to be sent to the client.
	send     chan []byte
	sendOnce sync.Once

	// close frames are written by WritePump so the connection has a single writer.
	kick     chan []byte
	kickOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance.
func NewClient(room *Room, wsConn *websocket.Conn, member Member, sessionID string) *Client {
	return &Client{
		room:      room,
		conn:      wsConn,
		member:    member,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
		kick:      make(chan []byte, 1),
		logger: logx.Component("Client").With().
			Str("client_id", member.ID).
			Str("event_id", room.EventID).
			Logger(),
	}
}

// ReadPump handles reading from the WebSocket connection until it closes, keeping
// the heartbeat alive and discarding data frames.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			return
		}
		c.logger.Debug().Msg("Discarding inbound frame; chat is posted over HTTP")
	}
}

// cleanupOnDisconnect unregisters the client and closes the connection.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.room.unregisterClient(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump handles writing frames from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case closeFrame := <-c.kick:
			c.writeClose(closeFrame)
			return

		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}

			if !c.sessionActive() {
				c.writeClose(websocket.FormatCloseMessage(WsCloseCodeSessionRevoked, "Session ended."))
				return
			}
		}
	}
}

// writeQueuedMessage returns false if the WritePump loop should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if !ok {
		c.writeClose(websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return false
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

func (c *Client) writeClose(frame []byte) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.CloseMessage, frame); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to write close frame.")
	}
}

// sessionActive reports false once the session behind the connection has been revoked.
// Registry errors keep the connection open.
func (c *Client) sessionActive() bool {
	if c.room.sessions == nil || c.sessionID == "" {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	active, err := c.room.sessions.Active(ctx, c.sessionID)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Session check failed, keeping connection.")
		return true
	}
	return active
}

// sendPush marshals push and queues it for this client only.
func (c *Client) sendPush(push Push) error {
	messageBytes, err := json.Marshal(push)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling push for client")
		return err
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping push")
		return errSendQueueFull
	}
}

// SendError queues a TypeError frame for this client.
func (c *Client) SendError(err error) {
	payload := ErrorPayload{Code: errs.ErrUnknown, Message: fmt.Sprintf("Internal server error: %v", err)}

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		payload = ErrorPayload{Code: customErr.Code, Message: customErr.Message}
	}

	errorMsg, msgErr := NewPush(TypeError, c.room.EventID, payload)
	if msgErr != nil {
		c.logger.Error().Err(msgErr).Msg("Failed to build error push")
		return
	}

	if err := c.sendPush(errorMsg); err != nil {
		c.logger.Error().Err(err).Msg("Failed to queue error push")
	}
}

// Kick asks WritePump to send a close frame with code and end the connection.
// Safe to call from any goroutine, more than once.
func (c *Client) Kick(code int, reason string) {
	c.kickOnce.Do(func() {
		c.logger.Warn().
			Int("close_code", code).
			Str("reason", reason).
			Msg("Kicking client.")

		c.kick <- websocket.FormatCloseMessage(code, reason)
	})
}

func (c *Client) closeSend() {
	c.sendOnce.Do(func() { close(c.send) })
}
