package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, storeID uuid.UUID) *Client {
	return &Client{
		hub:     hub,
		storeID: storeID,
		send:    make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	storeID := uuid.New()
	client := mockClient(hub, storeID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[storeID] == nil {
		t.Fatal("store room not created")
	}
	if !hub.rooms[storeID][client] {
		t.Fatal("client not registered in store room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	storeID := uuid.New()
	client := mockClient(hub, storeID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	// Room should be cleaned up when empty
	if hub.rooms[storeID] != nil {
		t.Fatal("store room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleStore(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	store1 := uuid.New()
	store2 := uuid.New()

	client1 := mockClient(hub, store1)
	client2 := mockClient(hub, store2)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	orderID := uuid.New()
	hub.BroadcastToStore(store1, NewOrderCreated(orderID, "ORD-0042", "PICKUP", "180.00"))

	// Check client1 receives the message
	select {
	case msg := <-client1.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != EventOrderCreated {
			t.Errorf("expected type %q, got %q", EventOrderCreated, received.Type)
		}
		var payload orderCreatedPayload
		if err := json.Unmarshal(received.Payload, &payload); err != nil {
			t.Fatalf("failed to unmarshal payload: %v", err)
		}
		if payload.OrderID != orderID || payload.OrderNumber != "ORD-0042" {
			t.Errorf("unexpected payload %+v", payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("client1 did not receive message")
	}

	// Check client2 does NOT receive the message
	select {
	case <-client2.send:
		t.Fatal("client2 should not have received message for different store")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message received
	}
}

func TestBroadcastToMultipleClientsInSameStore(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	storeID := uuid.New()
	client1 := mockClient(hub, storeID)
	client2 := mockClient(hub, storeID)
	client3 := mockClient(hub, storeID)

	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToStore(storeID, NewOrderStatusChanged(uuid.New(), "READY"))

	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderStatusChanged {
				t.Errorf("client%d: expected type %q, got %q", i+1, EventOrderStatusChanged, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	storeID := uuid.New()
	client1 := mockClient(hub, storeID)
	client2 := mockClient(hub, storeID)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[storeID]) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(hub.rooms[storeID]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if len(hub.rooms[storeID]) != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", len(hub.rooms[storeID]))
	}
	hub.mu.RUnlock()

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	if hub.rooms[storeID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	hub.mu.RUnlock()
}

func TestBroadcastToNonExistentStore(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	store1 := uuid.New()
	client1 := mockClient(hub, store1)
	hub.register <- client1
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToStore(uuid.New(), NewOrderCreated(uuid.New(), "ORD-0001", "PICKUP", "90.00"))

	// client1 should NOT receive anything
	select {
	case <-client1.send:
		t.Fatal("client should not receive message for different store")
	case <-time.After(50 * time.Millisecond):
		// Expected - no message
	}
}
