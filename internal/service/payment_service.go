package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/emberdate/ember/internal/solana"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransaction = errors.New("transaction is invalid or unconfirmed")
	ErrDuplicatePayment   = errors.New("this transaction was already processed")
	ErrInvalidPaymentType = errors.New("payment type must be initial or monthly")
)

const (
	initialPremiumDuration = 180 * 24 * time.Hour
	monthlyPremiumDuration = 30 * 24 * time.Hour
)

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	verifier    solana.Verifier
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	verifier solana.Verifier,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		verifier:    verifier,
	}
}

// Process verifies the on-chain transaction, records the payment and extends
// the premium window. The tx_signature uniqueness constraint makes the whole
// operation idempotent: a replayed signature fails before any premium change.
func (s *PaymentService) Process(ctx context.Context, userID uuid.UUID, txSignature string, amount float64, paymentType string) (*domain.Payment, error) {
	if paymentType != domain.PaymentTypeInitial && paymentType != domain.PaymentTypeMonthly {
		return nil, ErrInvalidPaymentType
	}

	valid, err := s.verifier.VerifyTransaction(ctx, txSignature)
	if err != nil {
		return nil, fmt.Errorf("verifying transaction: %w", err)
	}
	if !valid {
		return nil, ErrInvalidTransaction
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:          uuid.New(),
		UserID:      userID,
		TxSignature: txSignature,
		Amount:      amount,
		Type:        paymentType,
		Status:      domain.PaymentStatusConfirmed,
		ConfirmedAt: &now,
		CreatedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	until := premiumUntil(paymentType, user.PremiumUntil, now)
	if err := s.userRepo.SetPremium(ctx, userID, true, &until); err != nil {
		return nil, fmt.Errorf("updating premium state: %w", err)
	}

	log.Printf("payment processed for user %s: %f (%s), premium until %s", userID, amount, paymentType, until)
	return payment, nil
}

// premiumUntil computes the new expiry. Initial grants a fresh 180-day
// window; monthly stacks 30 days onto a still-running window, otherwise
// starts a new one from now.
func premiumUntil(paymentType string, current *time.Time, now time.Time) time.Time {
	if paymentType == domain.PaymentTypeInitial {
		return now.Add(initialPremiumDuration)
	}
	if current != nil && current.After(now) {
		return current.Add(monthlyPremiumDuration)
	}
	return now.Add(monthlyPremiumDuration)
}

// Status recomputes the premium view lazily: the stored flag may be stale, so
// it is reconciled against premium_until at read time.
func (s *PaymentService) Status(ctx context.Context, userID uuid.UUID) (*domain.SubscriptionStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := time.Now()
	active := user.IsPremium && user.PremiumUntil != nil && user.PremiumUntil.After(now)

	status := &domain.SubscriptionStatus{IsPremium: active}
	if active {
		status.PremiumUntil = user.PremiumUntil
		status.DaysRemaining = int(math.Ceil(user.PremiumUntil.Sub(now).Hours() / 24))
	}
	return status, nil
}

// Reconcile clears an expired premium flag. It is idempotent and invoked on
// every authenticated request so stale flags never linger past expiry.
func (s *PaymentService) Reconcile(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	if user.IsPremium && user.PremiumUntil != nil && !user.PremiumUntil.After(time.Now()) {
		return s.userRepo.SetPremium(ctx, userID, false, nil)
	}
	return nil
}

func (s *PaymentService) History(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return payments, nil
}
