package ws

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/omarionnn/mom-app/internal/observability"
	"github.com/omarionnn/mom-app/internal/repositories"
)

// GroupWebSocketHandler handles group websocket connections.
type GroupWebSocketHandler struct {
	hub       *Hub
	groupRepo repositories.GroupRepository
	jwtSecret string
}

// NewGroupWebSocketHandler constructs a GroupWebSocketHandler.
func NewGroupWebSocketHandler(hub *Hub, groupRepo repositories.GroupRepository, jwtSecret string) *GroupWebSocketHandler {
	return &GroupWebSocketHandler{hub: hub, groupRepo: groupRepo, jwtSecret: jwtSecret}
}

// Handle upgrades the connection and registers the client in the group's
// room. Membership is required.
func (h *GroupWebSocketHandler) Handle(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
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

	member, err := h.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for group"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := buildConnInfo(c, ctx, userID)
	h.hub.AddGroupClient(groupID, conn, info)

	observability.IncWSActive("group")
	publishConnEvent(ctx, "group", groupID, info, "ws_connect")

	go func() {
		defer func() {
			h.hub.RemoveGroupClient(groupID, conn)
			conn.Close()
			observability.DecWSActive("group")
			publishConnEvent(ctx, "group", groupID, info, "ws_disconnect")
		}()
		readUntilClosed(conn)
	}()
}
