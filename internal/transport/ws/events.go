package ws

import (
	"encoding/json"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/google/uuid"
)

// Event types - Client → Server
const (
	EventTypeJoinRoom    = "join_room"
	EventTypeLeaveRoom   = "leave_room"
	EventTypeSendMessage = "send_message"
	EventTypeTypingStart = "typing_start"
	EventTypeTypingStop  = "typing_stop"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeNewMessage = "new_message"
	EventTypeUserTyping = "user_typing"
	EventTypePong       = "pong"
	EventTypeError      = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	MatchID   *uuid.UUID      `json:"match_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

// RoomPayload carries the room to join or leave. The userId field clients
// send alongside it is ignored: identity comes from the authenticated
// connection, never from the payload.
type RoomPayload struct {
	MatchID uuid.UUID `json:"matchId"`
}

type SendMessagePayload struct {
	MatchID     uuid.UUID `json:"matchId"`
	Content     string    `json:"content"`
	MessageType string    `json:"messageType,omitempty"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type TypingPayload struct {
	UserID   uuid.UUID `json:"userId"`
	IsTyping bool      `json:"isTyping"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, matchID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		MatchID:   matchID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
