package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/omarionnn/mom-app/internal/models"
	"github.com/omarionnn/mom-app/internal/observability"
)

// Hub maintains active websocket rooms. Conversation rooms are keyed by
// match id, group rooms by group id, and user rooms by user id. Events
// carry identifiers only; clients re-fetch aggregates from the read
// endpoints after a notification.
type Hub struct {
	conversationRooms map[int]map[*websocket.Conn]ConnInfo
	groupRooms        map[int]map[*websocket.Conn]ConnInfo
	userRooms         map[int]map[*websocket.Conn]ConnInfo
	mu                sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conversationRooms: make(map[int]map[*websocket.Conn]ConnInfo),
		groupRooms:        make(map[int]map[*websocket.Conn]ConnInfo),
		userRooms:         make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddConversationClient registers a connection to a conversation room.
func (h *Hub) AddConversationClient(matchID int, conn *websocket.Conn, info ConnInfo) {
	h.addClient(h.conversationRooms, matchID, conn, info)
}

// RemoveConversationClient removes a conversation connection.
func (h *Hub) RemoveConversationClient(matchID int, conn *websocket.Conn) {
	h.removeClient(h.conversationRooms, matchID, conn)
}

// AddGroupClient registers a connection to a group room.
func (h *Hub) AddGroupClient(groupID int, conn *websocket.Conn, info ConnInfo) {
	h.addClient(h.groupRooms, groupID, conn, info)
}

// RemoveGroupClient removes a group connection.
func (h *Hub) RemoveGroupClient(groupID int, conn *websocket.Conn) {
	h.removeClient(h.groupRooms, groupID, conn)
}

// AddUserClient registers a per-user notification connection.
func (h *Hub) AddUserClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.addClient(h.userRooms, userID, conn, info)
}

// RemoveUserClient removes a notification connection.
func (h *Hub) RemoveUserClient(userID int, conn *websocket.Conn) {
	h.removeClient(h.userRooms, userID, conn)
}

// BroadcastConversationMessage sends a message event to the conversation.
func (h *Hub) BroadcastConversationMessage(matchID int, msg models.Message) {
	h.broadcast(h.conversationRooms, "conversation", matchID,
		models.ChatEvent{Type: "message", Message: &msg})
}

// BroadcastThreadRead notifies a conversation that one side read it.
func (h *Hub) BroadcastThreadRead(matchID, readerID int) {
	h.broadcast(h.conversationRooms, "conversation", matchID,
		models.ChatEvent{Type: "thread_read", FromUserID: readerID})
}

// BroadcastGroupMessage sends a message event to all clients in a group.
func (h *Hub) BroadcastGroupMessage(groupID int, msg models.GroupMessage) {
	h.broadcast(h.groupRooms, "group", groupID,
		models.GroupEvent{Type: "message", Message: &msg})
}

// BroadcastGroupDeletion notifies group clients of a soft delete.
func (h *Hub) BroadcastGroupDeletion(groupID, messageID int) {
	h.broadcast(h.groupRooms, "group", groupID,
		models.GroupEvent{Type: "message_deleted", MessageID: messageID})
}

// NotifyUser delivers an event to every notification connection a user
// holds.
func (h *Hub) NotifyUser(userID int, event models.UserEvent) {
	h.broadcast(h.userRooms, "user", userID, event)
}

// Stats reports room and connection counts per room kind.
func (h *Hub) Stats() map[string]map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]map[string]int{
		"conversation": roomStats(h.conversationRooms),
		"group":        roomStats(h.groupRooms),
		"user":         roomStats(h.userRooms),
	}
}

func roomStats(rooms map[int]map[*websocket.Conn]ConnInfo) map[string]int {
	total := 0
	for _, conns := range rooms {
		total += len(conns)
	}
	return map[string]int{"rooms": len(rooms), "connections": total}
}

func (h *Hub) addClient(rooms map[int]map[*websocket.Conn]ConnInfo, id int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := rooms[id]; !ok {
		rooms[id] = make(map[*websocket.Conn]ConnInfo)
	}
	rooms[id][conn] = info
}

func (h *Hub) removeClient(rooms map[int]map[*websocket.Conn]ConnInfo, id int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := rooms[id]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(rooms, id)
		}
	}
}

func (h *Hub) broadcast(rooms map[int]map[*websocket.Conn]ConnInfo, kind string, id int, event any) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(rooms[id]))
	for conn := range rooms[id] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.removeClient(rooms, id, conn)
			observability.IncWSEvent(kind, "ws_error")
		}
	}
}
