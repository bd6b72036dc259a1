package domain

import (
	"time"

	"github.com/google/uuid"
)

// Match is a mutual-like pairing. User1 is the sender of the like that
// completed the pair. Matches are deactivated on unmatch, never deleted.
type Match struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields for the matches list
	OtherUser   *UserSummary    `json:"other_user,omitempty"`
	LastMessage *MessagePreview `json:"last_message,omitempty"`
}

// MessagePreview is the last-message snippet shown in match lists. The
// repository fills Ciphertext; the match service decrypts it into Content.
type MessagePreview struct {
	Content    string    `json:"content"`
	Ciphertext []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	IsFromMe   bool      `json:"is_from_me"`
}

// HasParticipant reports whether userID is one of the two matched users.
func (m *Match) HasParticipant(userID uuid.UUID) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherUserID returns the participant that is not userID.
func (m *Match) OtherUserID(userID uuid.UUID) uuid.UUID {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}
