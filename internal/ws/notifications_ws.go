package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/omarionnn/mom-app/internal/observability"
)

// NotificationsWebSocketHandler delivers per-user events: new matches and
// unread-badge changes. Clients re-fetch the affected aggregates on each
// event instead of applying payloads locally.
type NotificationsWebSocketHandler struct {
	hub       *Hub
	jwtSecret string
}

// NewNotificationsWebSocketHandler constructs a NotificationsWebSocketHandler.
func NewNotificationsWebSocketHandler(hub *Hub, jwtSecret string) *NotificationsWebSocketHandler {
	return &NotificationsWebSocketHandler{hub: hub, jwtSecret: jwtSecret}
}

// Handle upgrades the connection and registers the caller's own room.
func (h *NotificationsWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("mom-app/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := authenticate(c, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := buildConnInfo(c, ctx, userID)
	h.hub.AddUserClient(userID, conn, info)

	observability.IncWSActive("user")
	publishConnEvent(ctx, "user", userID, info, "ws_connect")

	go func() {
		defer func() {
			h.hub.RemoveUserClient(userID, conn)
			conn.Close()
			observability.DecWSActive("user")
			publishConnEvent(ctx, "user", userID, info, "ws_disconnect")
		}()
		readUntilClosed(conn)
	}()
}
