package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/emberdate/ember/internal/crypto"
	"github.com/emberdate/ember/internal/domain"
	"github.com/emberdate/ember/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrSelfLike       = errors.New("you cannot like yourself")
	ErrAlreadyLiked   = errors.New("you already liked this user")
	ErrUserNotFound   = errors.New("user not found")
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("you are not part of this match")
	ErrMatchInactive  = errors.New("this match is no longer active")
)

type MatchService struct {
	likeRepo  repository.LikeRepository
	matchRepo repository.MatchRepository
	userRepo  repository.UserRepository
	codec     *crypto.Codec
}

func NewMatchService(
	likeRepo repository.LikeRepository,
	matchRepo repository.MatchRepository,
	userRepo repository.UserRepository,
	codec *crypto.Codec,
) *MatchService {
	return &MatchService{
		likeRepo:  likeRepo,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		codec:     codec,
	}
}

type LikeResult struct {
	Like    *domain.Like  `json:"like"`
	Match   *domain.Match `json:"match"`
	IsMatch bool          `json:"isMatch"`
}

// Like records a one-directional like and, when the reverse like already
// exists, materializes the match. The likes primary key rejects duplicates;
// the unordered-pair index on matches collapses concurrent mutual likes onto
// a single match row.
func (s *MatchService) Like(ctx context.Context, senderID, receiverID uuid.UUID) (*LikeResult, error) {
	if senderID == receiverID {
		return nil, ErrSelfLike
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("looking up receiver: %w", err)
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}

	like := &domain.Like{
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now(),
	}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyLiked
		}
		return nil, fmt.Errorf("creating like: %w", err)
	}

	reverse, err := s.likeRepo.Get(ctx, receiverID, senderID)
	if err != nil {
		return nil, err
	}
	if reverse == nil {
		return &LikeResult{Like: like}, nil
	}

	// Mutual like. User1 is the sender whose like completed the pair.
	match := &domain.Match{
		ID:        uuid.New(),
		User1ID:   senderID,
		User2ID:   receiverID,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent like on the same pair won the race; surface the
			// row that exists.
			match, err = s.matchRepo.GetByUsers(ctx, senderID, receiverID)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, fmt.Errorf("creating match: %w", err)
		}
	}

	log.Printf("match created between %s and %s", senderID, receiverID)
	return &LikeResult{Like: like, Match: match, IsMatch: true}, nil
}

// AuthorizeRead resolves the match and checks membership. Inactive matches
// stay readable so unmatched users keep their history.
func (s *MatchService) AuthorizeRead(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if !match.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return match, nil
}

// AuthorizeSend is AuthorizeRead plus the active-flag gate: only active
// matches accept new messages.
func (s *MatchService) AuthorizeSend(ctx context.Context, matchID, userID uuid.UUID) (*domain.Match, error) {
	match, err := s.AuthorizeRead(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if !match.IsActive {
		return nil, ErrMatchInactive
	}
	return match, nil
}

// ListMatches returns the user's active matches with the other user's summary
// and a decrypted last-message preview.
func (s *MatchService) ListMatches(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Match, error) {
	offset, limit := pageOffset(page, limit, 20)

	matches, err := s.matchRepo.ListForUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}

	for i := range matches {
		preview := matches[i].LastMessage
		if preview == nil {
			continue
		}
		plaintext, err := s.codec.Decrypt(preview.Ciphertext)
		if err != nil {
			log.Printf("match list: undecryptable preview for match %s: %v", matches[i].ID, err)
			preview.Content = ""
			continue
		}
		preview.Content = string(plaintext)
	}

	if matches == nil {
		matches = []domain.Match{}
	}
	return matches, nil
}

// Unmatch flips the match inactive. Either participant may do it; the row is
// kept so history stays readable.
func (s *MatchService) Unmatch(ctx context.Context, userID, matchID uuid.UUID) error {
	match, err := s.AuthorizeRead(ctx, matchID, userID)
	if err != nil {
		return err
	}
	return s.matchRepo.Deactivate(ctx, match.ID)
}

func (s *MatchService) ListLikesReceived(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Like, error) {
	offset, limit := pageOffset(page, limit, 20)
	likes, err := s.likeRepo.ListReceived(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []domain.Like{}
	}
	return likes, nil
}

func (s *MatchService) ListLikesSent(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Like, error) {
	offset, limit := pageOffset(page, limit, 20)
	likes, err := s.likeRepo.ListSent(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if likes == nil {
		likes = []domain.Like{}
	}
	return likes, nil
}

// pageOffset translates 1-based page/limit into an offset, clamping limit to
// (0, 100] with the given default.
func pageOffset(page, limit, defaultLimit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit, limit
}
