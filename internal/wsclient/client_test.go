package wsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func mockServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)
	return server
}

// newConnectedClient bypasses Connect's wss:// dial (the test server is
// plain ws://) and wires a Client directly around an already-open
// connection, exercising the post-handshake machinery the same way
// Connect's success path does.
func newConnectedClient(t *testing.T, server *httptest.Server, cb Callbacks) *Client {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	c := New(DefaultConfig(), cb)
	c.conn = conn
	c.state = Open
	c.wireControlHandlers()
	c.armReadDeadline()
	go c.readLoop()
	return c
}

func TestClient_MessageCallback(t *testing.T) {
	messages := []string{`{"type":"a"}`, `{"type":"b"}`}

	server := mockServer(t, func(conn *websocket.Conn) {
		for _, m := range messages {
			conn.WriteMessage(websocket.TextMessage, []byte(m))
			time.Sleep(5 * time.Millisecond)
		}
		time.Sleep(200 * time.Millisecond)
	})

	var mu sync.Mutex
	var received []string
	c := newConnectedClient(t, server, Callbacks{
		OnMessage: func(data []byte) {
			mu.Lock()
			received = append(received, string(data))
			mu.Unlock()
		},
	})
	defer c.Close()

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n >= len(messages) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for messages, got %d of %d", n, len(messages))
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i, want := range messages {
		if received[i] != want {
			t.Errorf("message %d = %q, want %q", i, received[i], want)
		}
	}
}

func TestClient_SendText(t *testing.T) {
	received := make(chan string, 1)
	server := mockServer(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err == nil {
			received <- string(msg)
		}
	})

	c := newConnectedClient(t, server, Callbacks{})
	defer c.Close()

	if err := c.SendText([]byte("hello")); err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	select {
	case got := <-received:
		if got != "hello" {
			t.Errorf("server received %q, want hello", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server to receive message")
	}
}

func TestClient_SendTextNotConnected(t *testing.T) {
	c := New(DefaultConfig(), Callbacks{})
	if err := c.SendText([]byte("x")); err == nil {
		t.Error("expected error sending on an unconnected client")
	}
}

func TestClient_Close(t *testing.T) {
	server := mockServer(t, func(conn *websocket.Conn) {
		time.Sleep(300 * time.Millisecond)
	})

	c := newConnectedClient(t, server, Callbacks{})
	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if c.State() != Closed {
		t.Errorf("State() = %v, want Closed", c.State())
	}
}

func TestClient_ConnectResolveFailure(t *testing.T) {
	c := New(Config{URL: "wss://this-host-does-not-exist.invalid/path", HandshakeTimeout: time.Second}, Callbacks{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.Connect(ctx)
	if err == nil {
		t.Fatal("expected an error connecting to an unresolvable host")
	}
	if c.State() != Closed {
		t.Errorf("State() = %v, want Closed after failure", c.State())
	}
}

func TestClient_ConnectInvalidURL(t *testing.T) {
	c := New(Config{URL: "http://not-wss"}, Callbacks{})
	err := c.Connect(context.Background())
	wsErr, ok := err.(*Error)
	if !ok || wsErr.Kind != InvalidUrl {
		t.Fatalf("got %v, want InvalidUrl", err)
	}
}

func TestClient_AttemptIDUniquePerClient(t *testing.T) {
	a := New(DefaultConfig(), Callbacks{})
	b := New(DefaultConfig(), Callbacks{})
	if a.AttemptID() == b.AttemptID() {
		t.Error("expected distinct attempt ids across client instances")
	}
}
