package postgres

import (
	"context"
	"errors"

	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

func (r *LikeRepo) Create(ctx context.Context, like *domain.Like) error {
	query := `
		INSERT INTO likes (sender_id, receiver_id, created_at)
		VALUES ($1, $2, $3)`
	_, err := r.pool.Exec(ctx, query, like.SenderID, like.ReceiverID, like.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *LikeRepo) Get(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.Like, error) {
	query := `
		SELECT sender_id, receiver_id, created_at
		FROM likes
		WHERE sender_id = $1 AND receiver_id = $2`
	var like domain.Like
	err := r.pool.QueryRow(ctx, query, senderID, receiverID).Scan(
		&like.SenderID, &like.ReceiverID, &like.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &like, err
}

func (r *LikeRepo) ListReceived(ctx context.Context, receiverID uuid.UUID, offset, limit int) ([]domain.Like, error) {
	query := `
		SELECT l.sender_id, l.receiver_id, l.created_at, u.id, u.username, u.avatar_url
		FROM likes l
		JOIN users u ON l.sender_id = u.id
		WHERE l.receiver_id = $1
		ORDER BY l.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, receiverID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []domain.Like
	for rows.Next() {
		var like domain.Like
		var sender domain.UserSummary
		if err := rows.Scan(
			&like.SenderID, &like.ReceiverID, &like.CreatedAt,
			&sender.ID, &sender.Username, &sender.AvatarURL,
		); err != nil {
			return nil, err
		}
		like.Sender = &sender
		likes = append(likes, like)
	}
	return likes, rows.Err()
}

func (r *LikeRepo) ListSent(ctx context.Context, senderID uuid.UUID, offset, limit int) ([]domain.Like, error) {
	query := `
		SELECT l.sender_id, l.receiver_id, l.created_at, u.id, u.username, u.avatar_url
		FROM likes l
		JOIN users u ON l.receiver_id = u.id
		WHERE l.sender_id = $1
		ORDER BY l.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, senderID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []domain.Like
	for rows.Next() {
		var like domain.Like
		var receiver domain.UserSummary
		if err := rows.Scan(
			&like.SenderID, &like.ReceiverID, &like.CreatedAt,
			&receiver.ID, &receiver.Username, &receiver.AvatarURL,
		); err != nil {
			return nil, err
		}
		like.Receiver = &receiver
		likes = append(likes, like)
	}
	return likes, rows.Err()
}
