package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"

	"github.com/omarionnn/mom-app/internal/middleware"
	"github.com/omarionnn/mom-app/internal/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}

// authenticate resolves the caller from the Authorization header or the
// token query param used by browser websocket clients.
func authenticate(c *gin.Context, secret string) (int, error) {
	token := c.GetHeader("Authorization")
	if token != "" {
		const prefix = "Bearer "
		if len(token) > len(prefix) && token[:len(prefix)] == prefix {
			token = token[len(prefix):]
		}
	} else {
		token = c.Query("token")
	}
	if token == "" {
		return 0, errors.New("missing token")
	}
	return middleware.ValidateToken(token, secret)
}

func buildConnInfo(c *gin.Context, ctx context.Context, userID int) ConnInfo {
	span := trace.SpanFromContext(ctx)
	return ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
}

// publishConnEvent emits a websocket lifecycle event for the connection.
func publishConnEvent(ctx context.Context, kind string, resourceID int, info ConnInfo, event string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"resource_id": resourceID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, "ws_events."+kind,
		observability.NewEventEnvelope("ws_events", event, payload), headers)
	observability.IncWSEvent(kind, event)
}

// readUntilClosed drains the connection so pings are answered, returning
// when the peer goes away.
func readUntilClosed(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
