package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/emberdate/ember/internal/service"
	"github.com/emberdate/ember/internal/transport/http/middleware"
	"github.com/google/uuid"
)

type MatchHandler struct {
	matchService *service.MatchService
}

func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		ReceiverID uuid.UUID `json:"receiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.ReceiverID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_RECEIVER", "receiverId is required")
		return
	}

	result, err := h.matchService.Like(r.Context(), userID, input.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfLike):
			writeError(w, http.StatusBadRequest, "SELF_LIKE", "You cannot like yourself")
		case errors.Is(err, service.ErrAlreadyLiked):
			writeError(w, http.StatusBadRequest, "ALREADY_LIKED", "You already liked this user")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			log.Printf("ERROR like: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page, limit := pageParams(r, 20)

	matches, err := h.matchService.ListMatches(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("ERROR list matches: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, matches)
}

func (h *MatchHandler) LikesReceived(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page, limit := pageParams(r, 20)

	likes, err := h.matchService.ListLikesReceived(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("ERROR likes received: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

func (h *MatchHandler) LikesSent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page, limit := pageParams(r, 20)

	likes, err := h.matchService.ListLikesSent(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("ERROR likes sent: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, likes)
}

func (h *MatchHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid match ID")
		return
	}

	if err := h.matchService.Unmatch(r.Context(), userID, matchID); err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound), errors.Is(err, service.ErrNotParticipant):
			// Non-participants get the same 404 as a missing match.
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Match not found")
		default:
			log.Printf("ERROR unmatch: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func pageParams(r *http.Request, defaultLimit int) (int, int) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	limit := defaultLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}
