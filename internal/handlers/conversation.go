package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/conversation"
)

// ConversationHandler manages the conversation list and message endpoints.
type ConversationHandler struct {
	conversations *conversation.Service
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversations *conversation.Service) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// List returns the enriched conversation list for the authenticated user.
func (h *ConversationHandler) List(c *gin.Context) {
	userID := c.GetInt64("userID")

	summaries, err := h.conversations.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// Send stores a direct message.
func (h *ConversationHandler) Send(c *gin.Context) {
	var req struct {
		ReceiverID int64   `json:"receiver_id" binding:"required"`
		Text       string  `json:"text"`
		MediaURL   *string `json:"media_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")
	msg, err := h.conversations.Send(c.Request.Context(), userID, req.ReceiverID, req.Text, req.MediaURL)
	if err != nil {
		if errors.Is(err, conversation.ErrSelfMessage) || errors.Is(err, conversation.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// History returns the two-party history with the given counterpart and
// fires the read receipt for it.
func (h *ConversationHandler) History(c *gin.Context) {
	counterpartID, err := strconv.ParseInt(c.Param("counterpart_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart id"})
		return
	}

	userID := c.GetInt64("userID")
	msgs, err := h.conversations.History(c.Request.Context(), userID, counterpartID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkRead explicitly flips the unread flags for one conversation.
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	counterpartID, err := strconv.ParseInt(c.Param("counterpart_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.conversations.MarkRead(c.Request.Context(), userID, counterpartID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark conversation read"})
		return
	}

	c.Status(http.StatusNoContent)
}
