package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/pkg/wsrouter"
)

// handle adapts a typed handler to the router's raw-payload signature.
func handle[T any](fn func(ctx context.Context, conn *websocket.Conn, input T) error) wsrouter.HandlerFunc {
	return func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		return fn(ctx, conn, input)
	}
}

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())

	// room lifecycle
	mux.Handle("create-room", handle(c.handleCreateRoom))
	mux.Handle("join-room", handle(c.handleJoinRoom))

	// playback (host only)
	mux.Handle("load-video", handle(c.handleLoadVideo))
	mux.Handle("play", handle(c.handlePlay))
	mux.Handle("pause", handle(c.handlePause))
	mux.Handle("heartbeat", handle(c.handleHeartbeat))
	mux.Handle("toggle-background-play", handle(c.handleToggleBackgroundPlay))

	// queue (host only)
	mux.Handle("add-to-queue", handle(c.handleAddToQueue))
	mux.Handle("remove-from-queue", handle(c.handleRemoveFromQueue))
	mux.Handle("play-next", handle(c.handlePlayNext))
	mux.Handle("video-ended", handle(c.handleVideoEnded))

	// chat
	mux.Handle("send-message", handle(c.handleSendMessage))

	// mini-game pass-through
	mux.Handle("start-game", handle(c.handleStartGame))
	mux.Handle("game-move", handle(c.handleGameMove))
	mux.Handle("game-reset", handle(c.handleGameReset))
	mux.Handle("game-state-sync", handle(c.handleGameStateSync))

	return mux
}
