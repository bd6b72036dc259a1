package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/emberdate/ember/internal/solana"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrWalletTaken      = errors.New("wallet address already registered")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrInvalidSignature = errors.New("wallet signature rejected")
	ErrNoProfile        = errors.New("no profile for this wallet")
)

// loginMessage is the fixed payload wallets sign to prove ownership.
const loginMessage = "ember: sign in"

type AuthService struct {
	userRepo    repository.UserRepository
	sigVerifier solana.SignatureVerifier
	jwtSecret   []byte
}

func NewAuthService(userRepo repository.UserRepository, sigVerifier solana.SignatureVerifier, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sigVerifier: sigVerifier,
		jwtSecret:   []byte(jwtSecret),
	}
}

type RegisterInput struct {
	WalletAddress string  `json:"wallet_address"`
	Username      string  `json:"username"`
	Bio           *string `json:"bio,omitempty"`
	Signature     string  `json:"signature"`
}

type LoginInput struct {
	WalletAddress string `json:"wallet_address"`
	Signature     string `json:"signature"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	if err := s.verifySignature(input.WalletAddress, input.Signature); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByWallet(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWalletTaken
	}

	existing, err = s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	now := time.Now()
	user := &domain.User{
		ID:            uuid.New(),
		WalletAddress: input.WalletAddress,
		Username:      input.Username,
		Bio:           input.Bio,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrWalletTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if err := s.verifySignature(input.WalletAddress, input.Signature); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByWallet(ctx, input.WalletAddress)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNoProfile
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) verifySignature(walletAddress, signature string) error {
	ok, err := s.sigVerifier.VerifyWalletSignature(walletAddress, []byte(loginMessage), []byte(signature))
	if err != nil {
		return fmt.Errorf("verifying signature: %w", err)
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

func (s *AuthService) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
