package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	return hub
}

// register subscribes a pump-less client and waits for the hub to record it.
func register(t *testing.T, hub *Hub, room string, buffer int) *Client {
	t.Helper()
	before := hub.RoomSize(room)
	client := &Client{Hub: hub, Send: make(chan []byte, buffer), Room: room}
	hub.Register <- client
	waitFor(t, func() bool { return hub.RoomSize(room) == before+1 })
	return client
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func receive(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case raw := <-client.Send:
		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		return envelope
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Envelope{}
	}
}

func TestPublishReachesRoomOnly(t *testing.T) {
	t.Parallel()
	hub := newTestHub(t)

	lobby := register(t, hub, LobbyRoom, 4)
	gameSub := register(t, hub, GameRoom(7), 4)
	otherGameSub := register(t, hub, GameRoom(8), 4)

	hub.Publish(GameRoom(7), TypeRosterUpdated, map[string]int{"game_id": 7})

	envelope := receive(t, gameSub)
	if envelope.Type != TypeRosterUpdated {
		t.Errorf("type = %q, want %q", envelope.Type, TypeRosterUpdated)
	}
	if envelope.RoomID != GameRoom(7) {
		t.Errorf("room = %q, want %q", envelope.RoomID, GameRoom(7))
	}

	if len(lobby.Send) != 0 {
		t.Error("lobby subscriber received a game-room message")
	}
	if len(otherGameSub.Send) != 0 {
		t.Error("subscriber of another game received the message")
	}
}

func TestPublishFanOut(t *testing.T) {
	t.Parallel()
	hub := newTestHub(t)

	subs := make([]*Client, 3)
	for i := range subs {
		subs[i] = register(t, hub, LobbyRoom, 4)
	}

	hub.Publish(LobbyRoom, TypeGameCreated, map[string]int{"game_id": 1})

	for i, sub := range subs {
		envelope := receive(t, sub)
		if envelope.Type != TypeGameCreated {
			t.Errorf("subscriber %d: type = %q, want %q", i, envelope.Type, TypeGameCreated)
		}
	}
}

// TestPublishSkipsSlowSubscriber fills one client's buffer and checks the
// publish neither blocks nor affects healthy subscribers.
func TestPublishSkipsSlowSubscriber(t *testing.T) {
	t.Parallel()
	hub := newTestHub(t)

	slow := register(t, hub, LobbyRoom, 1)
	healthy := register(t, hub, LobbyRoom, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Publish(LobbyRoom, TypeGameUpdated, 1) // fills slow's buffer
		hub.Publish(LobbyRoom, TypeGameUpdated, 2) // slow is skipped
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}

	if got := len(slow.Send); got != 1 {
		t.Errorf("slow subscriber buffered %d messages, want 1", got)
	}
	if got := len(healthy.Send); got != 2 {
		t.Errorf("healthy subscriber buffered %d messages, want 2", got)
	}
}

func TestUnregisterClosesClient(t *testing.T) {
	t.Parallel()
	hub := newTestHub(t)

	client := register(t, hub, GameRoom(1), 4)
	hub.Unregister <- client
	waitFor(t, func() bool { return hub.RoomSize(GameRoom(1)) == 0 })

	if _, open := <-client.Send; open {
		t.Error("send channel still open after unregister")
	}

	// Publishing into the now-empty room is a no-op.
	hub.Publish(GameRoom(1), TypeStatusChanged, nil)
}

func TestGameRoomNaming(t *testing.T) {
	t.Parallel()
	if got := GameRoom(42); got != "game_42" {
		t.Errorf("GameRoom(42) = %q, want %q", got, "game_42")
	}
}
