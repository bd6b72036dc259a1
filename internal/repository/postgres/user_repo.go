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

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, wallet_address, username, bio, avatar_url, is_premium, premium_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.WalletAddress, user.Username, user.Bio, user.AvatarURL,
		user.IsPremium, user.PremiumUntil, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, wallet_address, username, bio, avatar_url, is_premium, premium_until, created_at, updated_at FROM users WHERE id = $1", id)
}

func (r *UserRepo) GetByWallet(ctx context.Context, walletAddress string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, wallet_address, username, bio, avatar_url, is_premium, premium_until, created_at, updated_at FROM users WHERE wallet_address = $1", walletAddress)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, "SELECT id, wallet_address, username, bio, avatar_url, is_premium, premium_until, created_at, updated_at FROM users WHERE username = $1", username)
}

func (r *UserRepo) SetPremium(ctx context.Context, id uuid.UUID, isPremium bool, until *time.Time) error {
	query := `UPDATE users SET is_premium = $1, premium_until = $2, updated_at = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, isPremium, until, time.Now(), id)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.WalletAddress, &u.Username, &u.Bio, &u.AvatarURL,
		&u.IsPremium, &u.PremiumUntil, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}
