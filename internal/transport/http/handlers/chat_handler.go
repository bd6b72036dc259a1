package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/emberdate/ember/internal/service"
	"github.com/emberdate/ember/internal/transport/http/middleware"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService  *service.ChatService
	matchService *service.MatchService
}

func NewChatHandler(chatService *service.ChatService, matchService *service.MatchService) *ChatHandler {
	return &ChatHandler{chatService: chatService, matchService: matchService}
}

// Messages returns one page of a match's history. The route keeps the
// original product behavior: an inactive match reads as 404 here even though
// the chat service itself lets participants read deactivated history.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID, err := uuid.Parse(r.PathValue("matchId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid match ID")
		return
	}
	page, limit := pageParams(r, 50)

	if _, err := h.matchService.AuthorizeSend(r.Context(), matchID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound),
			errors.Is(err, service.ErrNotParticipant),
			errors.Is(err, service.ErrMatchInactive):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Match not found or inactive")
		default:
			log.Printf("ERROR authorize messages: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	messages, err := h.chatService.History(r.Context(), matchID, userID, page, limit)
	if err != nil {
		log.Printf("ERROR list messages: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	matchID, err := uuid.Parse(r.PathValue("matchId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid match ID")
		return
	}

	if err := h.chatService.MarkRead(r.Context(), matchID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound), errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Match not found")
		default:
			log.Printf("ERROR mark read: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ChatHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.chatService.Stats(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR chat stats: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
