package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/relationship"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

// FriendHandler manages the friendship lifecycle endpoints.
type FriendHandler struct {
	relationships *relationship.Service
	audit         *telemetry.AuditEmitter
}

// NewFriendHandler builds a FriendHandler.
func NewFriendHandler(relationships *relationship.Service, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{relationships: relationships, audit: audit}
}

// Status reports the relationship status with another user. Read path:
// never fails, degrades to "none".
func (h *FriendHandler) Status(c *gin.Context) {
	otherID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	userID := c.GetInt64("userID")
	status := h.relationships.StatusWith(c.Request.Context(), userID, otherID)
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// ListIncoming returns pending requests addressed to the authenticated
// user; a load failure degrades to an empty list.
func (h *FriendHandler) ListIncoming(c *gin.Context) {
	userID := c.GetInt64("userID")
	c.JSON(http.StatusOK, gin.H{"requests": h.relationships.IncomingRequests(c.Request.Context(), userID)})
}

// SendRequest creates a pending friend request.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req struct {
		ReceiverID int64 `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")
	created, err := h.relationships.SendRequest(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, relationship.ErrSelfRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, relationship.ErrAlreadyFriends),
			errors.Is(err, relationship.ErrPendingFromOther),
			errors.Is(err, repositories.ErrDuplicateRequest):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send friend request"})
		}
		return
	}

	h.emitAudit(c, fmt.Sprintf("friend request sent to user %d", req.ReceiverID))
	c.JSON(http.StatusCreated, gin.H{"request": created})
}

// CancelRequest withdraws a pending request; canceling an absent request
// succeeds.
func (h *FriendHandler) CancelRequest(c *gin.Context) {
	receiverID, err := strconv.ParseInt(c.Param("receiver_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.relationships.CancelRequest(c.Request.Context(), userID, receiverID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel friend request"})
		return
	}

	h.emitAudit(c, fmt.Sprintf("friend request to user %d canceled", receiverID))
	c.Status(http.StatusNoContent)
}

// AcceptRequest accepts a pending request addressed to the authenticated
// user.
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	userID := c.GetInt64("userID")
	req, err := h.relationships.AcceptRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept friend request"})
		return
	}

	h.emitAudit(c, fmt.Sprintf("friend request %d from user %d accepted", requestID, req.SenderID))
	c.JSON(http.StatusOK, gin.H{"status": relationship.StatusFriend})
}

// DeclineRequest declines a pending request; declining twice succeeds.
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.relationships.DeclineRequest(c.Request.Context(), requestID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decline friend request"})
		return
	}

	h.emitAudit(c, fmt.Sprintf("friend request %d declined", requestID))
	c.Status(http.StatusNoContent)
}

// Unfriend deletes the friendship; safe to call twice.
func (h *FriendHandler) Unfriend(c *gin.Context) {
	friendID, err := strconv.ParseInt(c.Param("friend_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.relationships.Unfriend(c.Request.Context(), userID, friendID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfriend"})
		return
	}

	h.emitAudit(c, fmt.Sprintf("unfriended user %d", friendID))
	c.Status(http.StatusNoContent)
}

func (h *FriendHandler) emitAudit(c *gin.Context, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), "INFO", text, requestIDFromContext(c), userIDFromContext(c))
}
