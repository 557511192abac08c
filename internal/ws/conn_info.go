package ws

import "time"

// ConnInfo carries the identity and correlation metadata captured at the
// websocket handshake. It is attached to the connection in its room and
// echoed into connect/disconnect events, so a socket can be tied back to
// the user, device, and trace that opened it.
type ConnInfo struct {
	ConnID    string
	UserID    int
	DeviceID  string
	IP        string
	RequestID string
	TraceID   string

	// ConnectedAt feeds the session duration on disconnect events.
	ConnectedAt time.Time
}
