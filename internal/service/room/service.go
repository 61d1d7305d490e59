package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/syncstream/server/internal/repository/mirror"
	roomRepo "github.com/syncstream/server/internal/repository/room"
	"github.com/syncstream/server/internal/repository/snapshot"
)

var ErrEmptyMessage = errors.New("empty message")

type iRoomRepo interface {
	CreateRoom(*roomRepo.CreateRoomParams) (roomRepo.CreateRoomResult, error)
	AddMember(*roomRepo.AddMemberParams) (roomRepo.AddMemberResult, error)
	RemoveMember(connId string) (roomRepo.RemoveMemberResult, error)
	GetMemberRoom(connId string) (roomRepo.MemberRoomResult, error)
	GetRoom(code string) (roomRepo.RoomState, error)
	SetVideo(*roomRepo.SetVideoParams) (roomRepo.PlayerResult, error)
	SetPlaying(*roomRepo.SetPlayingParams) (roomRepo.PlayerResult, error)
	UpdateCurrentTime(*roomRepo.UpdateCurrentTimeParams) (roomRepo.PlayerResult, error)
	SetBackgroundPlay(*roomRepo.SetBackgroundPlayParams) (roomRepo.PlayerResult, error)
	AppendQueueItem(*roomRepo.AppendQueueItemParams) (roomRepo.QueueResult, error)
	RemoveQueueItem(*roomRepo.RemoveQueueItemParams) (roomRepo.QueueResult, error)
	PopNextVideo(senderId string) (roomRepo.PopNextVideoResult, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connId string) error
	RemoveByConnId(connId string) (*websocket.Conn, error)
	GetConn(connId string) (*websocket.Conn, error)
}

type iMirrorRepo interface {
	InsertRoom(context.Context, *mirror.InsertRoomParams) error
	InsertMember(context.Context, *mirror.InsertMemberParams) error
	DeleteMember(ctx context.Context, connId string) error
	SetHost(context.Context, *mirror.SetHostParams) error
	UpdatePlayback(context.Context, *mirror.UpdatePlaybackParams) error
	RewriteQueue(ctx context.Context, roomCode string, entries []mirror.QueueEntry) error
	DeleteRoom(ctx context.Context, code string) error
}

type iSnapshotRepo interface {
	Upsert(context.Context, *snapshot.RoomSnapshot) error
	Get(ctx context.Context, code string) (snapshot.RoomSnapshot, error)
	Delete(ctx context.Context, code string) error
}

type service struct {
	roomRepo  iRoomRepo
	connRepo  iConnRepo
	mirror    iMirrorRepo
	snapshots iSnapshotRepo
	logger    *slog.Logger
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, mirrorRepo iMirrorRepo, snapshotRepo iSnapshotRepo, logger *slog.Logger) *service {
	return &service{
		roomRepo:  roomRepo,
		connRepo:  connRepo,
		mirror:    mirrorRepo,
		snapshots: snapshotRepo,
		logger:    logger,
	}
}
