package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/google/uuid"
)

// In-memory repository fakes. They enforce the same uniqueness constraints
// the Postgres schema does, so the services' Conflict paths are exercised
// for real.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.WalletAddress == user.WalletAddress || u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByWallet(ctx context.Context, wallet string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.WalletAddress == wallet {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) SetPremium(ctx context.Context, id uuid.UUID, isPremium bool, until *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.IsPremium = isPremium
	u.PremiumUntil = until
	r.users[id] = u
	return nil
}

type likeKey struct {
	sender, receiver uuid.UUID
}

type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[likeKey]domain.Like
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: make(map[likeKey]domain.Like)}
}

func (r *fakeLikeRepo) Create(ctx context.Context, like *domain.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := likeKey{like.SenderID, like.ReceiverID}
	if _, ok := r.likes[key]; ok {
		return repository.ErrDuplicate
	}
	r.likes[key] = *like
	return nil
}

func (r *fakeLikeRepo) Get(ctx context.Context, senderID, receiverID uuid.UUID) (*domain.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.likes[likeKey{senderID, receiverID}]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r *fakeLikeRepo) ListReceived(ctx context.Context, receiverID uuid.UUID, offset, limit int) ([]domain.Like, error) {
	return r.list(func(l domain.Like) bool { return l.ReceiverID == receiverID }, offset, limit), nil
}

func (r *fakeLikeRepo) ListSent(ctx context.Context, senderID uuid.UUID, offset, limit int) ([]domain.Like, error) {
	return r.list(func(l domain.Like) bool { return l.SenderID == senderID }, offset, limit), nil
}

func (r *fakeLikeRepo) list(keep func(domain.Like) bool, offset, limit int) []domain.Like {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Like
	for _, l := range r.likes {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, offset, limit)
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches []domain.Match
	// previews optionally supplies last-message previews for ListForUser.
	previews map[uuid.UUID]*domain.MessagePreview
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{previews: make(map[uuid.UUID]*domain.MessagePreview)}
}

func samePair(m domain.Match, a, b uuid.UUID) bool {
	return (m.User1ID == a && m.User2ID == b) || (m.User1ID == b && m.User2ID == a)
}

func (r *fakeMatchRepo) Create(ctx context.Context, match *domain.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if samePair(m, match.User1ID, match.User2ID) {
			return repository.ErrDuplicate
		}
	}
	r.matches = append(r.matches, *match)
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeMatchRepo) GetByUsers(ctx context.Context, userA, userB uuid.UUID) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if samePair(m, userA, userB) {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeMatchRepo) ListForUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Match
	for _, m := range r.matches {
		if m.IsActive && m.HasParticipant(userID) {
			m := m
			m.OtherUser = &domain.UserSummary{ID: m.OtherUserID(userID)}
			if p, ok := r.previews[m.ID]; ok {
				preview := *p
				m.LastMessage = &preview
			}
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, offset, limit), nil
}

func (r *fakeMatchRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.matches {
		if r.matches[i].ID == id {
			r.matches[i].IsActive = false
		}
	}
	return nil
}

func (r *fakeMatchRepo) CountActiveForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.matches {
		if m.IsActive && m.HasParticipant(userID) {
			count++
		}
	}
	return count, nil
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ID == id {
			m := m
			m.Sender = &domain.UserSummary{ID: m.SenderID}
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListByMatch(ctx context.Context, matchID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.msgs {
		if m.MatchID == matchID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return paginate(out, offset, limit), nil
}

func (r *fakeMessageRepo) CountBySender(ctx context.Context, senderID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.msgs {
		if m.SenderID == senderID {
			count++
		}
	}
	return count, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]domain.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.TxSignature]; ok {
		return repository.ErrDuplicate
	}
	r.payments[payment.TxSignature] = *payment
	return nil
}

func (r *fakePaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeVerifier is a canned transaction oracle.
type fakeVerifier struct {
	valid bool
	err   error
}

func (v fakeVerifier) VerifyTransaction(ctx context.Context, signature string) (bool, error) {
	return v.valid, v.err
}

// fakeNotifier records every broadcast message.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []*domain.Message
}

func (n *fakeNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *fakeNotifier) messages() []*domain.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*domain.Message(nil), n.sent...)
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
