package domain

import (
	"time"

	"github.com/google/uuid"
)

// Like is a one-directional expression of interest. At most one exists per
// ordered (sender, receiver) pair; likes are never updated or deleted.
type Like struct {
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	CreatedAt  time.Time `json:"created_at"`
	// Joined fields
	Sender   *UserSummary `json:"sender,omitempty"`
	Receiver *UserSummary `json:"receiver,omitempty"`
}
