package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatrelay/chatrelay-server/internal/store"
)

// HistoryHandlers serves the point-in-time read path for persisted messages.
type HistoryHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewHistoryHandlers creates a new history handlers instance.
func NewHistoryHandlers(st store.Store, logger *zerolog.Logger) *HistoryHandlers {
	return &HistoryHandlers{
		store: st,
		log:   logger,
	}
}

// MessageResponse represents a persisted message in API responses.
type MessageResponse struct {
	ChatRoomID string `json:"chatRoomId"`
	Username   string `json:"username"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetMessages returns every persisted message for a room in write order.
// GET /getMessages?chatRoomId=<id>
func (h *HistoryHandlers) GetMessages(c *gin.Context) {
	chatRoomID := c.Query("chatRoomId")
	if chatRoomID == "" {
		// Rejected before any store access.
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "chatRoomId is required"})
		return
	}

	messages, err := h.store.MessagesByRoom(c.Request.Context(), chatRoomID)
	if err != nil {
		h.log.Error().Err(err).Str("chat_room_id", chatRoomID).Msg("failed to fetch messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "error fetching messages"})
		return
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, MessageResponse{
			ChatRoomID: msg.ChatRoomID,
			Username:   msg.Username,
			Message:    msg.Body,
			Timestamp:  msg.Timestamp.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, resp)
}
