package repository

import (
	"context"
	"errors"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/google/uuid"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint
// (duplicate like, duplicate match pair, duplicate payment signature).
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	SetPremium(ctx context.Context, id uuid.UUID, isPremium bool, until *time.Time) error
}

type LikeRepository interface {
	Create(ctx context.Context, like *domain.Like) error
	Get(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.Like, error)
	ListReceived(ctx context.Context, receiverID uuid.UUID, offset, limit int) ([]domain.Like, error)
	ListSent(ctx context.Context, senderID uuid.UUID, offset, limit int) ([]domain.Like, error)
}

type MatchRepository interface {
	// Create inserts the match unless one already exists for the unordered
	// pair, in which case it returns ErrDuplicate. The unordered-pair unique
	// index makes this safe under concurrent mutual likes.
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	GetByUsers(ctx context.Context, userA, userB uuid.UUID) (*domain.Match, error)
	ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Match, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	CountActiveForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListByMatch returns up to limit messages at offset, computed against
	// the total order (created_at ASC, id ASC).
	ListByMatch(ctx context.Context, matchID uuid.UUID, offset, limit int) ([]domain.Message, error)
	CountBySender(ctx context.Context, senderID uuid.UUID) (int, error)
}

type PaymentRepository interface {
	// Create returns ErrDuplicate when the transaction signature was already
	// recorded; that uniqueness constraint is the idempotency guard.
	Create(ctx context.Context, payment *domain.Payment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error)
}
