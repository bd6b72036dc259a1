package ws

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// Hub owns the set of live connections and serializes every room broadcast
// through one loop, so per-room delivery order equals the order sends
// completed.
type Hub struct {
	// clients holds every live connection; a user with several devices has
	// several entries.
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	matchID uuid.UUID
	data    []byte
	exclude *Client // optional: skip this connection (typing events)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.broadcast:
			for client := range h.clients {
				if msg.exclude == client {
					continue
				}
				// Only connections currently joined to the match room get it.
				if !client.InRoom(msg.matchID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		close(client.done)
		log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
	}
}

// BroadcastToRoom sends an event to every connection joined to the match's
// room. Pass exclude to leave out the originating connection.
func (h *Hub) BroadcastToRoom(matchID uuid.UUID, event *Event, exclude *Client) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.broadcast <- &broadcastMsg{
		matchID: matchID,
		data:    data,
		exclude: exclude,
	}
}

// HandleTyping relays a typing signal to the room, excluding the sender's own
// connection. Nothing is persisted.
func (h *Hub) HandleTyping(sender *Client, matchID uuid.UUID, isTyping bool) {
	evt, err := NewEvent(EventTypeUserTyping, &matchID, TypingPayload{
		UserID:   sender.userID,
		IsTyping: isTyping,
	})
	if err != nil {
		return
	}
	h.BroadcastToRoom(matchID, evt, sender)
}
