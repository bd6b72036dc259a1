package ws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowAuthorizer admits every join; denyAuthorizer refuses them all.
type allowAuthorizer struct{}

func (allowAuthorizer) AuthorizeRead(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error) {
	return &domain.Match{ID: matchID}, nil
}

type denyAuthorizer struct{}

func (denyAuthorizer) AuthorizeRead(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error) {
	return nil, errors.New("not a participant")
}

type recordingSender struct {
	matchID  uuid.UUID
	senderID uuid.UUID
	content  string
	err      error
}

func (s *recordingSender) Send(ctx context.Context, matchID, senderID uuid.UUID, content, msgType string) (*domain.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.matchID = matchID
	s.senderID = senderID
	s.content = content
	return &domain.Message{ID: uuid.New(), MatchID: matchID, SenderID: senderID, Content: content}, nil
}

func newTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	c := NewClient(hub, nil, uuid.New(), allowAuthorizer{}, &recordingSender{})
	hub.register <- c
	return c
}

// recvEvent pulls one queued outbound event off the client's send buffer.
func recvEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case data := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func rawPayload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestBroadcastReachesOnlyJoinedConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	matchID := uuid.New()
	joined1 := newTestClient(t, hub)
	joined2 := newTestClient(t, hub)
	outsider := newTestClient(t, hub)

	joined1.JoinRoom(matchID)
	joined2.JoinRoom(matchID)

	evt, err := NewEvent(EventTypeNewMessage, &matchID, MessagePayload{})
	require.NoError(t, err)
	hub.BroadcastToRoom(matchID, evt, nil)

	got1 := recvEvent(t, joined1)
	got2 := recvEvent(t, joined2)
	assert.Equal(t, EventTypeNewMessage, got1.Type)
	assert.Equal(t, EventTypeNewMessage, got2.Type)
	require.NotNil(t, got1.MatchID)
	assert.Equal(t, matchID, *got1.MatchID)
	assertNoEvent(t, outsider)
}

func TestTypingExcludesSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	matchID := uuid.New()
	sender := newTestClient(t, hub)
	peer := newTestClient(t, hub)
	sender.JoinRoom(matchID)
	peer.JoinRoom(matchID)

	hub.HandleTyping(sender, matchID, true)

	evt := recvEvent(t, peer)
	assert.Equal(t, EventTypeUserTyping, evt.Type)

	var p TypingPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	assert.Equal(t, sender.userID, p.UserID)
	assert.True(t, p.IsTyping)

	assertNoEvent(t, sender)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	matchID := uuid.New()
	c := newTestClient(t, hub)

	c.JoinRoom(matchID)
	assert.True(t, c.InRoom(matchID))
	c.LeaveRoom(matchID)
	assert.False(t, c.InRoom(matchID))

	evt, err := NewEvent(EventTypeNewMessage, &matchID, MessagePayload{})
	require.NoError(t, err)
	hub.BroadcastToRoom(matchID, evt, nil)
	assertNoEvent(t, c)
}

func TestJoinRoomAuthorization(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	matchID := uuid.New()

	t.Run("participant joins", func(t *testing.T) {
		c := newTestClient(t, hub)
		c.handleEvent(&Event{
			Type:    EventTypeJoinRoom,
			Payload: rawPayload(t, RoomPayload{MatchID: matchID}),
		})
		assert.True(t, c.InRoom(matchID))
	})

	t.Run("non-participant refused", func(t *testing.T) {
		c := NewClient(hub, nil, uuid.New(), denyAuthorizer{}, &recordingSender{})
		hub.register <- c
		c.handleEvent(&Event{
			Type:    EventTypeJoinRoom,
			Payload: rawPayload(t, RoomPayload{MatchID: matchID}),
		})
		assert.False(t, c.InRoom(matchID))

		evt := recvEvent(t, c)
		assert.Equal(t, EventTypeError, evt.Type)
		var p ErrorPayload
		require.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, "FORBIDDEN", p.Code)
	})

	t.Run("malformed payload", func(t *testing.T) {
		c := newTestClient(t, hub)
		c.handleEvent(&Event{Type: EventTypeJoinRoom, Payload: json.RawMessage(`"nope"`)})
		evt := recvEvent(t, c)
		assert.Equal(t, EventTypeError, evt.Type)
	})
}

func TestHandleSendMessage(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	matchID := uuid.New()

	t.Run("delegates to the sender", func(t *testing.T) {
		sender := &recordingSender{}
		c := NewClient(hub, nil, uuid.New(), allowAuthorizer{}, sender)
		hub.register <- c

		c.handleEvent(&Event{
			Type:    EventTypeSendMessage,
			Payload: rawPayload(t, SendMessagePayload{MatchID: matchID, Content: "hey"}),
		})
		assert.Equal(t, matchID, sender.matchID)
		assert.Equal(t, c.userID, sender.senderID)
		assert.Equal(t, "hey", sender.content)
		assertNoEvent(t, c)
	})

	t.Run("empty content refused", func(t *testing.T) {
		c := newTestClient(t, hub)
		c.handleEvent(&Event{
			Type:    EventTypeSendMessage,
			Payload: rawPayload(t, SendMessagePayload{MatchID: matchID}),
		})
		evt := recvEvent(t, c)
		var p ErrorPayload
		require.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, "MISSING_CONTENT", p.Code)
	})

	t.Run("send failure reaches only this connection", func(t *testing.T) {
		c := NewClient(hub, nil, uuid.New(), allowAuthorizer{}, &recordingSender{err: errors.New("match inactive")})
		hub.register <- c
		peer := newTestClient(t, hub)
		peer.JoinRoom(matchID)

		c.handleEvent(&Event{
			Type:    EventTypeSendMessage,
			Payload: rawPayload(t, SendMessagePayload{MatchID: matchID, Content: "hey"}),
		})
		evt := recvEvent(t, c)
		var p ErrorPayload
		require.NoError(t, json.Unmarshal(evt.Payload, &p))
		assert.Equal(t, "SEND_FAILED", p.Code)
		assertNoEvent(t, peer)
	})
}

func TestPingPongAndUnknownEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	c := newTestClient(t, hub)

	c.handleEvent(&Event{Type: EventTypePing})
	evt := recvEvent(t, c)
	assert.Equal(t, EventTypePong, evt.Type)

	c.handleEvent(&Event{Type: "dance"})
	evt = recvEvent(t, c)
	assert.Equal(t, EventTypeError, evt.Type)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	assert.Equal(t, "UNKNOWN_EVENT", p.Code)
}

func TestHubNotifierFansOutNewMessages(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	matchID := uuid.New()
	recipient := newTestClient(t, hub)
	recipient.JoinRoom(matchID)

	msg := &domain.Message{
		ID:       uuid.New(),
		MatchID:  matchID,
		SenderID: uuid.New(),
		Content:  "hello there",
	}
	NewHubNotifier(hub).NotifyNewMessage(msg)

	evt := recvEvent(t, recipient)
	assert.Equal(t, EventTypeNewMessage, evt.Type)

	var p MessagePayload
	require.NoError(t, json.Unmarshal(evt.Payload, &p))
	assert.Equal(t, msg.ID, p.Message.ID)
	assert.Equal(t, "hello there", p.Message.Content)
}
