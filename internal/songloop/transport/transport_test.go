package transport

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeGateway struct {
	mu           sync.Mutex
	connected    []*Client
	intents      [][]byte
	disconnected []string
}

func (g *fakeGateway) Connected(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = append(g.connected, c)
	c.Send([]byte(`{"type":"welcome"}`))
}

func (g *fakeGateway) Intent(connID string, raw []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents = append(g.intents, raw)
}

func (g *fakeGateway) Disconnected(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disconnected = append(g.disconnected, connID)
}

func (g *fakeGateway) snapshot() (int, int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.connected), len(g.intents), len(g.disconnected)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	hub := NewHub(nil)
	srv := httptest.NewServer(NewHandler(hub, gw, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	// the gateway greets on connect
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if !strings.Contains(string(frame), "welcome") {
		t.Fatalf("unexpected first frame %s", frame)
	}
	if hub.Count() != 1 {
		t.Fatalf("expected 1 client in the hub, got %d", hub.Count())
	}

	// inbound intents reach the gateway
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"list_rooms"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool {
		_, intents, _ := gw.snapshot()
		return intents == 1
	})

	// fan-out through the hub lands on the socket
	gw.mu.Lock()
	id := gw.connected[0].ID
	gw.mu.Unlock()
	hub.Send(id, []byte(`{"type":"room_updated"}`))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, frame, err = conn.ReadMessage(); err != nil {
		t.Fatalf("read fan-out: %v", err)
	}
	if !strings.Contains(string(frame), "room_updated") {
		t.Fatalf("unexpected frame %s", frame)
	}

	// closing the socket reports a disconnect and empties the hub
	_ = conn.Close()
	waitFor(t, func() bool {
		_, _, disc := gw.snapshot()
		return disc == 1 && hub.Count() == 0
	})
}

func TestClientIdentity(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	hub := NewHub(nil)
	srv := httptest.NewServer(NewHandler(hub, gw, nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	a, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer a.Close()
	b, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer b.Close()

	waitFor(t, func() bool {
		conns, _, _ := gw.snapshot()
		return conns == 2
	})

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.connected[0].ID == gw.connected[1].ID {
		t.Fatal("connection ids must be unique")
	}
	if gw.connected[0].Token == "" || gw.connected[0].Token == gw.connected[1].Token {
		t.Fatal("session tokens must be unique and non-empty")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never held")
}
