package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func (r *MatchRepo) Create(ctx context.Context, match *domain.Match) error {
	// The matches_pair_idx unique index covers the unordered pair, so two
	// concurrent mutual likes cannot both insert.
	query := `
		INSERT INTO matches (id, user1_id, user2_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query, match.ID, match.User1ID, match.User2ID, match.IsActive, match.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *MatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, is_active, created_at
		FROM matches
		WHERE id = $1`
	var m domain.Match
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.User1ID, &m.User2ID, &m.IsActive, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}

func (r *MatchRepo) GetByUsers(ctx context.Context, userA, userB uuid.UUID) (*domain.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, is_active, created_at
		FROM matches
		WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)`
	var m domain.Match
	err := r.pool.QueryRow(ctx, query, userA, userB).Scan(
		&m.ID, &m.User1ID, &m.User2ID, &m.IsActive, &m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}

// ListForUser returns the user's active matches newest first, each with the
// other participant's summary and the latest message (still ciphertext; the
// chat service decrypts previews).
func (r *MatchRepo) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Match, error) {
	query := `
		SELECT m.id, m.user1_id, m.user2_id, m.is_active, m.created_at,
			CASE WHEN m.user1_id = $1 THEN u2.id ELSE u1.id END,
			CASE WHEN m.user1_id = $1 THEN u2.username ELSE u1.username END,
			CASE WHEN m.user1_id = $1 THEN u2.avatar_url ELSE u1.avatar_url END,
			lm.content, lm.sender_id, lm.created_at
		FROM matches m
		JOIN users u1 ON m.user1_id = u1.id
		JOIN users u2 ON m.user2_id = u2.id
		LEFT JOIN LATERAL (
			SELECT content, sender_id, created_at
			FROM messages
			WHERE match_id = m.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON true
		WHERE (m.user1_id = $1 OR m.user2_id = $1) AND m.is_active
		ORDER BY m.created_at DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		var other domain.UserSummary
		var lastContent []byte
		var lastSenderID *uuid.UUID
		var lastCreatedAt *time.Time
		if err := rows.Scan(
			&m.ID, &m.User1ID, &m.User2ID, &m.IsActive, &m.CreatedAt,
			&other.ID, &other.Username, &other.AvatarURL,
			&lastContent, &lastSenderID, &lastCreatedAt,
		); err != nil {
			return nil, err
		}
		m.OtherUser = &other
		if lastSenderID != nil && lastCreatedAt != nil {
			m.LastMessage = &domain.MessagePreview{
				Ciphertext: lastContent,
				CreatedAt:  *lastCreatedAt,
				IsFromMe:   *lastSenderID == userID,
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *MatchRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE matches SET is_active = false WHERE id = $1`, id)
	return err
}

func (r *MatchRepo) CountActiveForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM matches WHERE (user1_id = $1 OR user2_id = $1) AND is_active`,
		userID,
	).Scan(&count)
	return count, err
}
