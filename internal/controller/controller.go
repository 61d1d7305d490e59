package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/repository/snapshot"
	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/validator"
	"github.com/syncstream/server/pkg/wsrouter"
)

type iRoomService interface {
	ConnectMember(context.Context, *room.ConnectMemberParams) error
	DisconnectMember(ctx context.Context, connId string) (room.DisconnectMemberResponse, error)
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LoadVideo(context.Context, *room.LoadVideoParams) (room.PlayerResponse, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) (room.PlayerResponse, error)
	Heartbeat(context.Context, *room.HeartbeatParams) (room.HeartbeatResponse, error)
	ToggleBackgroundPlay(context.Context, *room.ToggleBackgroundPlayParams) (room.ToggleBackgroundPlayResponse, error)
	AddToQueue(context.Context, *room.AddToQueueParams) (room.QueueResponse, error)
	RemoveFromQueue(context.Context, *room.RemoveFromQueueParams) (room.QueueResponse, error)
	PlayNext(ctx context.Context, senderId string) (room.PlayNextResponse, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
	RelayGameEvent(ctx context.Context, senderId string) (room.RelayGameEventResponse, error)
	GetRoomSnapshot(ctx context.Context, code string) (snapshot.RoomSnapshot, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	writeLocks  *sync.Map
	logger      *slog.Logger
}

func NewController(roomService iRoomService, logger *slog.Logger) *controller {
	c := &controller{
		roomService: roomService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:   validator.NewValidator(),
		writeLocks: &sync.Map{},
		logger:     logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}

func (c controller) generateConnId() string {
	return uuid.NewString()
}

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

// timestamp is the wall-clock ms value attached to outgoing payloads for
// client-side latency compensation.
func (c controller) timestamp() int64 {
	return time.Now().UnixMilli()
}
