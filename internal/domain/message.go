package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID       uuid.UUID `json:"id"`
	MatchID  uuid.UUID `json:"match_id"`
	SenderID uuid.UUID `json:"sender_id"`
	// Content carries plaintext in process and on the wire; Ciphertext is
	// what is persisted (nonce-prefixed) and never leaves the chat service.
	Content     string    `json:"content"`
	Ciphertext  []byte    `json:"-"`
	Type        string    `json:"message_type"`
	IsEncrypted bool      `json:"is_encrypted"`
	Unreadable  bool      `json:"unreadable,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// Joined fields
	Sender *UserSummary `json:"sender,omitempty"`
}
