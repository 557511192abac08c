package ws

import "testing"

func TestHubAddAndRemoveConversationClient(t *testing.T) {
	hub := NewHub()

	hub.AddConversationClient(1, nil, ConnInfo{})
	if len(hub.conversationRooms) != 1 {
		t.Fatalf("expected conversation room to be created")
	}

	hub.RemoveConversationClient(1, nil)
	if len(hub.conversationRooms) != 0 {
		t.Fatalf("expected conversation room to be removed")
	}
}

func TestHubAddAndRemoveGroupClient(t *testing.T) {
	hub := NewHub()

	hub.AddGroupClient(2, nil, ConnInfo{})
	if len(hub.groupRooms) != 1 {
		t.Fatalf("expected group room to be created")
	}

	hub.RemoveGroupClient(2, nil)
	if len(hub.groupRooms) != 0 {
		t.Fatalf("expected group room to be removed")
	}
}

func TestHubAddAndRemoveUserClient(t *testing.T) {
	hub := NewHub()

	hub.AddUserClient(3, nil, ConnInfo{})
	if len(hub.userRooms) != 1 {
		t.Fatalf("expected user room to be created")
	}

	hub.RemoveUserClient(3, nil)
	if len(hub.userRooms) != 0 {
		t.Fatalf("expected user room to be removed")
	}
}

func TestHubStats(t *testing.T) {
	hub := NewHub()
	hub.AddConversationClient(1, nil, ConnInfo{})
	hub.AddUserClient(3, nil, ConnInfo{})

	stats := hub.Stats()
	if stats["conversation"]["rooms"] != 1 || stats["conversation"]["connections"] != 1 {
		t.Fatalf("unexpected conversation stats: %v", stats["conversation"])
	}
	if stats["group"]["rooms"] != 0 {
		t.Fatalf("unexpected group stats: %v", stats["group"])
	}
	if stats["user"]["connections"] != 1 {
		t.Fatalf("unexpected user stats: %v", stats["user"])
	}
}
