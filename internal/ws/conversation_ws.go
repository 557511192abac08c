package ws

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/omarionnn/mom-app/internal/observability"
	"github.com/omarionnn/mom-app/internal/repositories"
)

// ConversationWebSocketHandler handles per-conversation websocket
// connections, keyed by match id.
type ConversationWebSocketHandler struct {
	hub       *Hub
	matchRepo repositories.MatchRepository
	jwtSecret string
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, matchRepo repositories.MatchRepository, jwtSecret string) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, matchRepo: matchRepo, jwtSecret: jwtSecret}
}

// Handle upgrades the connection and registers the client in the match's
// room. Only a participant of the match may subscribe.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	matchID, err := strconv.Atoi(c.Param("match_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	ctx, span := otel.Tracer("mom-app/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := authenticate(c, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	match, err := h.matchRepo.GetByID(ctx, matchID)
	if err != nil || !match.HasUser(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := buildConnInfo(c, ctx, userID)
	h.hub.AddConversationClient(matchID, conn, info)

	observability.IncWSActive("conversation")
	publishConnEvent(ctx, "conversation", matchID, info, "ws_connect")

	go func() {
		defer func() {
			h.hub.RemoveConversationClient(matchID, conn)
			conn.Close()
			observability.DecWSActive("conversation")
			publishConnEvent(ctx, "conversation", matchID, info, "ws_disconnect")
		}()
		readUntilClosed(conn)
	}()
}
