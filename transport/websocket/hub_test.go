package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/micromouse/game/engine"
	"github.com/wricardo/micromouse/game/robot"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 4),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.done
	})
	return hub
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sessionID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients in %s, got %d", want, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// Second unregister is a no-op rather than a double close
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other")
	hub.registerClient(watcher)
	hub.registerClient(other)

	state := &engine.TrialState{
		TrialID:    "t1",
		Status:     engine.Navigating,
		Run:        1,
		Body:       robot.Pose{Position: robot.Position{X: 5, Y: 3}, Heading: robot.Right},
		TotalTurns: 12,
	}
	hub.broadcastMessage(&Message{SessionID: "broadcast-test", Event: EventState, TrialState: state})

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "broadcast-test" || message.Event != EventState {
			t.Errorf("Unexpected message header: %+v", message)
		}
		if message.TrialState.Body.Position != (robot.Position{X: 5, Y: 3}) {
			t.Errorf("Trial state not correctly transmitted: %+v", message.TrialState.Body)
		}
		if message.TrialState.Status != engine.Navigating {
			t.Errorf("Expected navigating status, got %s", message.TrialState.Status)
		}
	default:
		t.Error("No message queued for watcher")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the message")
	default:
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(hub, "slow")
	hub.registerClient(slow)

	for i := 0; i < cap(slow.send)+1; i++ {
		hub.broadcastMessage(&Message{SessionID: "slow", Event: "tick"})
	}

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Slow client should have been unregistered")
	}
}

func TestHubBroadcastEventQueues(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" || message.Event != "custom-event" {
			t.Errorf("Unexpected message: %+v", message)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	default:
		t.Error("Broadcast message should be queued before the hub runs")
	}
}

func TestHubStoppedDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	for i := 0; i < engine.WebSocketBufferSize+10; i++ {
		hub.BroadcastState("any", &engine.TrialState{})
	}
	if n := hub.ClientCount("any"); n != 0 {
		t.Errorf("Expected 0 clients on a stopped hub, got %d", n)
	}
}

func dialSession(t *testing.T, hub *Hub, sessionID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "ws-test")

	waitForClients(t, hub, "ws-test", 1)

	conn.Close()

	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketStepReceive(t *testing.T) {
	hub := startHub(t)
	conn := dialSession(t, hub, "msg-test")
	defer conn.Close()

	waitForClients(t, hub, "msg-test", 1)

	entry := &engine.MoveHistoryEntry{
		Run:      0,
		Turn:     3,
		Sensors:  robot.Sensors{0, 2, 1},
		Decision: robot.Decision{Move: robot.Move{Rotation: 90, Distance: 1}},
		Moved:    1,
	}
	state := &engine.TrialState{TrialID: "t2", Status: engine.Exploring, TotalTurns: 3}
	hub.BroadcastStep("msg-test", entry, state)
	hub.BroadcastEvent("msg-test", EventReset, map[string]int{"run": 1})

	conn.SetReadDeadline(time.Now().Add(time.Second))

	var step Message
	if err := conn.ReadJSON(&step); err != nil {
		t.Fatalf("Failed to read step message: %v", err)
	}
	if step.Event != EventStep || step.Step == nil {
		t.Fatalf("Expected step event, got %+v", step)
	}
	if step.Step.Turn != 3 || step.Step.Decision.Move.Rotation != 90 {
		t.Errorf("Step not correctly received: %+v", step.Step)
	}
	if step.TrialState.TotalTurns != 3 {
		t.Errorf("Expected 3 total turns, got %d", step.TrialState.TotalTurns)
	}

	var reset Message
	if err := conn.ReadJSON(&reset); err != nil {
		t.Fatalf("Failed to read reset message: %v", err)
	}
	if reset.Event != EventReset {
		t.Errorf("Expected reset event, got %s", reset.Event)
	}
}
