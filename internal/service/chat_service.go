package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emberdate/ember/internal/crypto"
	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/google/uuid"
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
}

type ChatService struct {
	messageRepo repository.MessageRepository
	matchSvc    *MatchService
	codec       *crypto.Codec
	matchRepo   repository.MatchRepository
	notifier    Notifier
}

func NewChatService(
	messageRepo repository.MessageRepository,
	matchRepo repository.MatchRepository,
	matchSvc *MatchService,
	codec *crypto.Codec,
) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		matchRepo:   matchRepo,
		matchSvc:    matchSvc,
		codec:       codec,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send encrypts and persists a message for an active match the sender belongs
// to, then hands the plaintext back for fan-out. Stored content is always
// ciphertext.
func (s *ChatService) Send(ctx context.Context, matchID, senderID uuid.UUID, content, msgType string) (*domain.Message, error) {
	match, err := s.matchSvc.AuthorizeSend(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}
	// The guard already ran; this re-check is the store's own invariant.
	if !match.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	if msgType == "" {
		msgType = "text"
	}

	ciphertext, err := s.codec.Encrypt([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("encrypting message: %w", err)
	}

	msg := &domain.Message{
		ID:          uuid.New(),
		MatchID:     matchID,
		SenderID:    senderID,
		Ciphertext:  ciphertext,
		Type:        msgType,
		IsEncrypted: true,
		CreatedAt:   time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Re-fetch for the joined sender summary, then restore the plaintext for
	// in-process delivery.
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	full.Content = content
	full.Ciphertext = nil

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// History returns one page of a match's messages, oldest first, decrypted.
// Inactive matches stay readable. A message that fails to decrypt becomes a
// tombstone with empty content rather than failing the page.
func (s *ChatService) History(ctx context.Context, matchID, userID uuid.UUID, page, limit int) ([]domain.Message, error) {
	if _, err := s.matchSvc.AuthorizeRead(ctx, matchID, userID); err != nil {
		return nil, err
	}

	offset, limit := pageOffset(page, limit, 50)

	messages, err := s.messageRepo.ListByMatch(ctx, matchID, offset, limit)
	if err != nil {
		return nil, err
	}

	for i := range messages {
		plaintext, err := s.codec.Decrypt(messages[i].Ciphertext)
		if err != nil {
			log.Printf("chat: undecryptable message %s: %v", messages[i].ID, err)
			messages[i].Content = ""
			messages[i].Unreadable = true
			messages[i].Ciphertext = nil
			continue
		}
		messages[i].Content = string(plaintext)
		messages[i].Ciphertext = nil
	}

	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead is an explicit stub: read tracking ships later as a last-read
// timestamp per participant. It still authorizes so the route contract holds.
func (s *ChatService) MarkRead(ctx context.Context, matchID, userID uuid.UUID) error {
	_, err := s.matchSvc.AuthorizeRead(ctx, matchID, userID)
	return err
}

type ChatStats struct {
	TotalMessages int `json:"totalMessages"`
	ActiveMatches int `json:"activeMatches"`
	UnreadCount   int `json:"unreadCount"`
}

func (s *ChatService) Stats(ctx context.Context, userID uuid.UUID) (*ChatStats, error) {
	total, err := s.messageRepo.CountBySender(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := s.matchRepo.CountActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// UnreadCount stays 0 until read tracking lands.
	return &ChatStats{TotalMessages: total, ActiveMatches: active}, nil
}
