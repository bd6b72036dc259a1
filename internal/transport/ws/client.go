package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Authorizer checks that a user participates in a match before the connection
// may join its room.
type Authorizer interface {
	AuthorizeRead(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error)
}

// MessageSender persists and fans out a chat message.
type MessageSender interface {
	Send(ctx context.Context, matchID, senderID uuid.UUID, content, msgType string) (*domain.Message, error)
}

// Client represents a single WebSocket connection. Its identity is fixed at
// connect time from the token; payload-supplied user IDs are never trusted.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID

	authorizer Authorizer
	sender     MessageSender

	// rooms tracks which match rooms this connection has joined.
	rooms map[uuid.UUID]struct{}
	mu    sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, authorizer Authorizer, sender MessageSender) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		userID:     userID,
		authorizer: authorizer,
		sender:     sender,
		rooms:      make(map[uuid.UUID]struct{}),
		send:       make(chan []byte, sendBufSize),
		done:       make(chan struct{}),
	}
}

// InRoom checks if this connection has joined a match room.
func (c *Client) InRoom(matchID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.rooms[matchID]
	return ok
}

// JoinRoom adds a room membership.
func (c *Client) JoinRoom(matchID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[matchID] = struct{}{}
}

// LeaveRoom removes a room membership.
func (c *Client) LeaveRoom(matchID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, matchID)
}

// ReadPump reads events from the WebSocket and routes them. When it returns,
// the unregister path clears every room this connection had joined.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoinRoom:
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid join_room payload")
			return
		}
		if _, err := c.authorizer.AuthorizeRead(context.Background(), p.MatchID, c.userID); err != nil {
			c.sendError("FORBIDDEN", "you cannot join this room")
			return
		}
		c.JoinRoom(p.MatchID)
		log.Printf("ws: %s joined room match_%s", c.userID, p.MatchID)

	case EventTypeLeaveRoom:
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid leave_room payload")
			return
		}
		c.LeaveRoom(p.MatchID)
		log.Printf("ws: %s left room match_%s", c.userID, p.MatchID)

	case EventTypeSendMessage:
		c.handleSend(event)

	case EventTypeTypingStart, EventTypeTypingStop:
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "matchId required for typing events")
			return
		}
		c.hub.HandleTyping(c, p.MatchID, event.Type == EventTypeTypingStart)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// handleSend persists the message through the chat service. The service's
// notifier broadcasts new_message to the room; a failure only reaches this
// connection.
func (c *Client) handleSend(event *Event) {
	var p SendMessagePayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		c.sendError("INVALID_PAYLOAD", "invalid send_message payload")
		return
	}
	if p.Content == "" {
		c.sendError("MISSING_CONTENT", "message content is required")
		return
	}

	if _, err := c.sender.Send(context.Background(), p.MatchID, c.userID, p.Content, p.MessageType); err != nil {
		log.Printf("ws: send from %s to match %s failed: %v", c.userID, p.MatchID, err)
		c.sendError("SEND_FAILED", err.Error())
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
