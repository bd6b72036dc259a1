package postgres

import (
	"context"
	"errors"

	"github.com/emberdate/ember/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, match_id, sender_id, content, message_type, is_encrypted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.MatchID, msg.SenderID, msg.Ciphertext, msg.Type, msg.IsEncrypted, msg.CreatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.match_id, m.sender_id, m.content, m.message_type, m.is_encrypted, m.created_at,
			u.id, u.username, u.avatar_url
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	var sender domain.UserSummary
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.MatchID, &msg.SenderID, &msg.Ciphertext, &msg.Type, &msg.IsEncrypted, &msg.CreatedAt,
		&sender.ID, &sender.Username, &sender.AvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	msg.Sender = &sender
	return &msg, err
}

// ListByMatch pages through a match's messages in the total order
// (created_at ASC, id ASC), so concatenating pages reproduces the full
// history exactly.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.match_id, m.sender_id, m.content, m.message_type, m.is_encrypted, m.created_at,
			u.id, u.username, u.avatar_url
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.match_id = $1
		ORDER BY m.created_at ASC, m.id ASC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, matchID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var sender domain.UserSummary
		if err := rows.Scan(
			&msg.ID, &msg.MatchID, &msg.SenderID, &msg.Ciphertext, &msg.Type, &msg.IsEncrypted, &msg.CreatedAt,
			&sender.ID, &sender.Username, &sender.AvatarURL,
		); err != nil {
			return nil, err
		}
		msg.Sender = &sender
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *MessageRepo) CountBySender(ctx context.Context, senderID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE sender_id = $1`, senderID).Scan(&count)
	return count, err
}
