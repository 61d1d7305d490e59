package controller

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"

	roomRepo "github.com/syncstream/server/internal/repository/room"
	"github.com/syncstream/server/internal/service/room"
)

// silentDrop maps protocol violations to a no-op. A non-host issuing a
// host-only command, a stale connection, or an empty queue must not
// produce any outbound event or close the connection.
func (c controller) silentDrop(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, roomRepo.ErrPermissionDenied),
		errors.Is(err, roomRepo.ErrMemberNotFound),
		errors.Is(err, roomRepo.ErrEmptyQueue),
		errors.Is(err, roomRepo.ErrAlreadyInRoom),
		errors.Is(err, room.ErrEmptyMessage):
		c.logger.DebugContext(ctx, "dropped message", "reason", err)
		return nil
	}

	return err
}

type createRoomInput struct {
	Username string `json:"username" validate:"max=64"`
}

func (c controller) handleCreateRoom(ctx context.Context, conn *websocket.Conn, input createRoomInput) error {
	connId := c.getConnIdFromCtx(ctx)

	if _, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(ctx, "dropped message", "reason", "invalid payload")
		return nil
	}

	if input.Username == "" {
		input.Username = "Anonymous"
	}

	resp, err := c.roomService.CreateRoom(ctx, &room.CreateRoomParams{
		ConnId:   connId,
		Username: input.Username,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "room-created",
		Payload: map[string]any{
			"success": true,
			"roomId":  resp.Code,
			"isHost":  true,
		},
	}); err != nil {
		return err
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "user-list", Payload: resp.Members})
	c.broadcast(ctx, resp.Conns, &Output{Type: "queue-update", Payload: resp.Queue})
	return nil
}

type joinRoomInput struct {
	RoomId   string `json:"roomId" validate:"required,len=6,alphanum"`
	Username string `json:"username" validate:"max=64"`
}

func (c controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, input joinRoomInput) error {
	connId := c.getConnIdFromCtx(ctx)

	if input.Username == "" {
		input.Username = "Anonymous"
	}

	joinError := &Output{
		Type:    "join-error",
		Payload: map[string]any{"error": "Room not found"},
	}

	if _, ok := c.validate.Validate(input); !ok {
		return c.writeToConn(ctx, conn, joinError)
	}

	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId:   connId,
		Code:     input.RoomId,
		Username: input.Username,
	})
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return c.writeToConn(ctx, conn, joinError)
		}
		return c.silentDrop(ctx, err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type: "room-joined",
		Payload: map[string]any{
			"success": true,
			"roomId":  resp.Code,
			"isHost":  false,
			"state": map[string]any{
				"videoId":        resp.State.VideoId,
				"currentTime":    resp.State.CurrentTime,
				"isPlaying":      resp.State.IsPlaying,
				"backgroundPlay": resp.State.BackgroundPlay,
				"timestamp":      c.timestamp(),
			},
		},
	}); err != nil {
		return err
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "user-list", Payload: resp.Members})
	c.broadcast(ctx, resp.Conns, &Output{Type: "queue-update", Payload: resp.Queue})
	c.broadcast(ctx, resp.Conns, &Output{
		Type: "new-message",
		Payload: map[string]any{
			"username":  "System",
			"message":   input.Username + " joined the room",
			"timestamp": c.timestamp(),
			"isSystem":  true,
		},
	})
	return nil
}

type loadVideoInput struct {
	VideoId     string  `json:"videoId"`
	CurrentTime float64 `json:"currentTime"`
}

func (c controller) handleLoadVideo(ctx context.Context, conn *websocket.Conn, input loadVideoInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.LoadVideo(ctx, &room.LoadVideoParams{
		SenderId:    connId,
		VideoId:     input.VideoId,
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "video-loaded",
		Payload: map[string]any{
			"videoId":     resp.Player.VideoId,
			"currentTime": resp.Player.CurrentTime,
			"isPlaying":   resp.Player.IsPlaying,
			"timestamp":   c.timestamp(),
		},
	})
	return nil
}

type playPauseInput struct {
	CurrentTime float64 `json:"currentTime"`
}

func (c controller) handlePlay(ctx context.Context, conn *websocket.Conn, input playPauseInput) error {
	return c.updatePlayerState(ctx, "play", input.CurrentTime, true)
}

func (c controller) handlePause(ctx context.Context, conn *websocket.Conn, input playPauseInput) error {
	return c.updatePlayerState(ctx, "pause", input.CurrentTime, false)
}

func (c controller) updatePlayerState(ctx context.Context, event string, currentTime float64, isPlaying bool) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		SenderId:    connId,
		CurrentTime: currentTime,
		IsPlaying:   isPlaying,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: event,
		Payload: map[string]any{
			"currentTime": resp.Player.CurrentTime,
			"timestamp":   c.timestamp(),
		},
	})
	return nil
}

type heartbeatInput struct {
	CurrentTime float64 `json:"currentTime"`
}

func (c controller) handleHeartbeat(ctx context.Context, conn *websocket.Conn, input heartbeatInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.Heartbeat(ctx, &room.HeartbeatParams{
		SenderId:    connId,
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "sync-check",
		Payload: map[string]any{
			"currentTime": resp.CurrentTime,
			"isPlaying":   resp.IsPlaying,
			"timestamp":   c.timestamp(),
		},
	})
	return nil
}

type toggleBackgroundPlayInput struct {
	Enabled bool `json:"enabled"`
}

func (c controller) handleToggleBackgroundPlay(ctx context.Context, conn *websocket.Conn, input toggleBackgroundPlayInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.ToggleBackgroundPlay(ctx, &room.ToggleBackgroundPlayParams{
		SenderId: connId,
		Enabled:  input.Enabled,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "background-play-update",
		Payload: map[string]any{"enabled": resp.Enabled},
	})
	return nil
}

type addToQueueInput struct {
	VideoId string `json:"videoId"`
	Title   string `json:"title"`
}

func (c controller) handleAddToQueue(ctx context.Context, conn *websocket.Conn, input addToQueueInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.AddToQueue(ctx, &room.AddToQueueParams{
		SenderId: connId,
		VideoId:  input.VideoId,
		Title:    input.Title,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "queue-update", Payload: resp.Queue})
	return nil
}

type removeFromQueueInput struct {
	Position int `json:"position"`
}

func (c controller) handleRemoveFromQueue(ctx context.Context, conn *websocket.Conn, input removeFromQueueInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.RemoveFromQueue(ctx, &room.RemoveFromQueueParams{
		SenderId: connId,
		Position: input.Position,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{Type: "queue-update", Payload: resp.Queue})
	return nil
}

type emptyInput struct{}

func (c controller) handlePlayNext(ctx context.Context, conn *websocket.Conn, input emptyInput) error {
	return c.advanceQueue(ctx)
}

func (c controller) handleVideoEnded(ctx context.Context, conn *websocket.Conn, input emptyInput) error {
	return c.advanceQueue(ctx)
}

func (c controller) advanceQueue(ctx context.Context) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.PlayNext(ctx, connId)
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "video-loaded",
		Payload: map[string]any{
			"videoId":     resp.Player.VideoId,
			"currentTime": resp.Player.CurrentTime,
			"isPlaying":   resp.Player.IsPlaying,
			"timestamp":   c.timestamp(),
		},
	})
	c.broadcast(ctx, resp.Conns, &Output{Type: "queue-update", Payload: resp.Queue})
	return nil
}

type sendMessageInput struct {
	Message string `json:"message"`
}

func (c controller) handleSendMessage(ctx context.Context, conn *websocket.Conn, input sendMessageInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		SenderId: connId,
		Message:  input.Message,
	})
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "new-message",
		Payload: map[string]any{
			"username":  resp.Username,
			"message":   resp.Message,
			"timestamp": c.timestamp(),
			"senderId":  connId,
		},
	})
	return nil
}

type startGameInput struct {
	GameName string `json:"gameName"`
}

func (c controller) handleStartGame(ctx context.Context, conn *websocket.Conn, input startGameInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.RelayGameEvent(ctx, connId)
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "game-started",
		Payload: map[string]any{
			"gameName":  input.GameName,
			"startedBy": resp.Username,
		},
	})
	return nil
}

type gameMoveInput struct {
	GameName string          `json:"gameName"`
	MoveData json.RawMessage `json:"moveData"`
}

func (c controller) handleGameMove(ctx context.Context, conn *websocket.Conn, input gameMoveInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.RelayGameEvent(ctx, connId)
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "game-move-update",
		Payload: map[string]any{
			"gameName":   input.GameName,
			"moveData":   input.MoveData,
			"playerId":   connId,
			"playerName": resp.Username,
		},
	})
	return nil
}

type gameResetInput struct {
	GameName string `json:"gameName"`
}

func (c controller) handleGameReset(ctx context.Context, conn *websocket.Conn, input gameResetInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.RelayGameEvent(ctx, connId)
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type:    "game-reset-update",
		Payload: map[string]any{"gameName": input.GameName},
	})
	return nil
}

type gameStateSyncInput struct {
	GameName  string          `json:"gameName"`
	GameState json.RawMessage `json:"gameState"`
}

func (c controller) handleGameStateSync(ctx context.Context, conn *websocket.Conn, input gameStateSyncInput) error {
	connId := c.getConnIdFromCtx(ctx)

	resp, err := c.roomService.RelayGameEvent(ctx, connId)
	if err != nil {
		return c.silentDrop(ctx, err)
	}

	c.broadcast(ctx, resp.Conns, &Output{
		Type: "game-state-update",
		Payload: map[string]any{
			"gameName":  input.GameName,
			"gameState": input.GameState,
		},
	})
	return nil
}
