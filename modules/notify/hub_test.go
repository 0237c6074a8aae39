package notify

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeConn records written messages.
type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	c.messages = append(c.messages, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *fakeConn) lastMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return string(c.messages[len(c.messages)-1])
}

func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})
	return hub
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func TestHub_SendToUserReachesAllUserSockets(t *testing.T) {
	hub := startHub(t)

	connA1 := &fakeConn{}
	connA2 := &fakeConn{}
	connB := &fakeConn{}

	hub.Register(&Client{ID: "c1", UserID: "alice", Conn: connA1})
	hub.Register(&Client{ID: "c2", UserID: "alice", Conn: connA2})
	hub.Register(&Client{ID: "c3", UserID: "bob", Conn: connB})
	waitFor(t, func() bool { return hub.ClientCount() == 3 }, "clients to register")

	hub.SendToUser("alice", map[string]string{"type": "task_assigned"})
	waitFor(t, func() bool {
		return connA1.messageCount() == 1 && connA2.messageCount() == 1
	}, "alice's sockets to receive")

	if connB.messageCount() != 0 {
		t.Errorf("bob received %d messages, want 0", connB.messageCount())
	}
	if got := connA1.lastMessage(); got != `{"type":"task_assigned"}` {
		t.Errorf("message = %s, want task_assigned payload", got)
	}
}

func TestHub_SendToUnknownUserIsDropped(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{}
	hub.Register(&Client{ID: "c1", UserID: "alice", Conn: conn})
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client to register")

	hub.SendToUser("nobody", map[string]string{"type": "task_updated"})
	// Follow with a delivered message to ensure the dropped one was processed
	hub.SendToUser("alice", map[string]string{"type": "task_updated"})
	waitFor(t, func() bool { return conn.messageCount() == 1 }, "alice to receive")

	if conn.messageCount() != 1 {
		t.Errorf("messages = %d, want 1", conn.messageCount())
	}
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := startHub(t)

	conn := &fakeConn{}
	client := &Client{ID: "c1", UserID: "alice", Conn: conn}
	hub.Register(client)
	waitFor(t, func() bool { return hub.UserClientCount("alice") == 1 }, "client to register")

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.UserClientCount("alice") == 0 }, "client to unregister")

	hub.SendToUser("alice", map[string]string{"type": "task_updated"})
	time.Sleep(50 * time.Millisecond)

	if conn.messageCount() != 0 {
		t.Errorf("messages after unregister = %d, want 0", conn.messageCount())
	}
}

func TestHub_ShutdownClosesConnections(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	conn := &fakeConn{}
	hub.Register(&Client{ID: "c1", UserID: "alice", Conn: conn})
	waitFor(t, func() bool { return hub.ClientCount() == 1 }, "client to register")

	cancel()
	hub.Wait()

	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Error("expected connection closed on shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("clients after shutdown = %d, want 0", hub.ClientCount())
	}
}

func TestHub_CallsAfterShutdownDoNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()
	hub.Wait()

	late := &fakeConn{}
	client := &Client{ID: "late", UserID: "alice", Conn: late}

	finished := make(chan struct{})
	go func() {
		hub.Register(client)
		hub.SendToUser("alice", map[string]string{"type": "task_updated"})
		hub.Unregister(client)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("hub calls blocked after shutdown")
	}

	late.mu.Lock()
	defer late.mu.Unlock()
	if !late.closed {
		t.Error("expected late connection closed")
	}
	if len(late.messages) != 0 {
		t.Errorf("late connection received %d messages, want 0", len(late.messages))
	}
}
