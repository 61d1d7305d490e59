package controller

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// writeJSON serializes writers on the connection; gorilla permits at most
// one concurrent writer per connection, and overlapping fan-outs from
// different members' read goroutines can target the same conn.
func (c controller) writeJSON(conn *websocket.Conn, out *Output) error {
	mu, _ := c.writeLocks.LoadOrStore(conn, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	return conn.WriteJSON(out)
}

func (c controller) writeToConn(ctx context.Context, conn *websocket.Conn, out *Output) error {
	if err := c.writeJSON(conn, out); err != nil {
		c.logger.DebugContext(ctx, "failed to write to connection", "type", out.Type, "error", err)
		return err
	}

	return nil
}

// broadcast delivers the event to every connection, at most once each.
// A connection that fails mid-fan-out is skipped; delivery is best effort
// and never retried.
func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, out *Output) {
	for _, conn := range conns {
		if err := c.writeJSON(conn, out); err != nil {
			c.logger.DebugContext(ctx, "failed to deliver broadcast", "type", out.Type, "error", err)
		}
	}
}
