package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/ctxlogger"
)

// serveWS upgrades the connection, mints its opaque connection id and
// pumps protocol events until the transport reports the connection gone.
// Disconnect cleanup (room removal, host failover, teardown) runs before
// this goroutine exits.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	connId := c.generateConnId()
	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))

	if err := c.roomService.ConnectMember(ctx, &room.ConnectMemberParams{
		Conn:   conn,
		ConnId: connId,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to register connection", "error", err)
		return
	}

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}

	c.handleDisconnect(ctx, connId)
	c.writeLocks.Delete(conn)
}

func (c controller) handleDisconnect(ctx context.Context, connId string) {
	resp, err := c.roomService.DisconnectMember(ctx, connId)
	if err != nil {
		// connection never joined a room
		return
	}

	if resp.IsRoomDeleted {
		return
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "new-message",
		Payload: map[string]any{
			"username":  "System",
			"message":   resp.Username + " left the room",
			"timestamp": c.timestamp(),
			"isSystem":  true,
		},
	})

	if resp.PromotedConn != nil {
		c.writeToConn(ctx, resp.PromotedConn, &Output{Type: "promoted-to-host"})
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "user-list", Payload: resp.Members})
}
