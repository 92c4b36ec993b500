package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"messenger-service/internal/auth"
	"messenger-service/internal/conversation"
	"messenger-service/internal/feed"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
)

const viewerKind = "conversations"

// ConversationWebSocketHandler streams the enriched conversation list to a
// viewer. Each connection owns one live message-feed subscription; every
// snapshot replaces the previous list entirely.
type ConversationWebSocketHandler struct {
	hub           *Hub
	messageFeed   *feed.Hub[models.Message]
	conversations *conversation.Service
	verifier      auth.Verifier
}

// NewConversationWebSocketHandler constructs the handler.
func NewConversationWebSocketHandler(hub *Hub, messageFeed *feed.Hub[models.Message], conversations *conversation.Service, verifier auth.Verifier) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{
		hub:           hub,
		messageFeed:   messageFeed,
		conversations: conversations,
		verifier:      verifier,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and starts the push loop.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("messenger-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// View context: torn down when the socket closes, canceling the feed
	// subscription and any in-flight enrichment lookups.
	viewCtx, cancel := context.WithCancel(context.Background())

	sub, err := h.messageFeed.Subscribe(viewCtx)
	if err != nil {
		cancel()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		cancel()
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddViewer(userID, conn, info)
	observability.IncWSActive(viewerKind)
	observability.IncWSEvent(viewerKind, "ws_connect")
	publishViewerEvent(ctx, "ws_connect", info, "")

	go h.readLoop(conn, cancel)
	go h.pushLoop(viewCtx, cancel, userID, conn, sub, info)
}

func (h *ConversationWebSocketHandler) validateToken(header string) (int64, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return 0, auth.ErrInvalidToken
	}
	return h.verifier.Verify(parts[1])
}

// readLoop drains client frames only to detect the close; this view is
// push-only.
func (h *ConversationWebSocketHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent(viewerKind, "ws_error")
			}
			return
		}
	}
}

func (h *ConversationWebSocketHandler) pushLoop(ctx context.Context, cancel context.CancelFunc, userID int64, conn *websocket.Conn, sub *feed.Subscription[models.Message], info ConnInfo) {
	var closeReason string
	defer func() {
		cancel()
		sub.Close()
		h.hub.RemoveViewer(userID, conn)
		observability.DecWSActive(viewerKind)
		observability.IncWSEvent(viewerKind, "ws_disconnect")
		publishViewerEvent(context.Background(), "ws_disconnect", info, closeReason)
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-sub.C:
			if !ok {
				return
			}
			summaries := h.conversations.ListFromSnapshot(ctx, userID, snapshot, time.Now())
			event := models.ConversationEvent{Type: "conversations", Conversations: summaries}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("websocket write error conn=%s: %v", info.ConnID, err)
				closeReason = err.Error()
				return
			}
			observability.IncWSEvent(viewerKind, "snapshot_pushed")
		}
	}
}

func publishViewerEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        viewerKind,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}
