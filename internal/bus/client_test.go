package bus

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestClientClosesOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// RetryOnFailedConnect means an unreachable server still yields a client
	// that keeps retrying in the background.
	c, err := NewClient(ctx, "nats://127.0.0.1:1", "", logger)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if c.conn.IsClosed() {
		t.Fatal("connection closed before cancel")
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for !c.conn.IsClosed() {
		if time.Now().After(deadline) {
			t.Fatal("connection still open after context cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
