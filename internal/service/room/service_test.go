package room

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	connInmemory "github.com/syncstream/server/internal/repository/connection/inmemory"
	"github.com/syncstream/server/internal/repository/mirror"
	mirrorGorm "github.com/syncstream/server/internal/repository/mirror/gorm"
	roomRepo "github.com/syncstream/server/internal/repository/room"
	roomInmemory "github.com/syncstream/server/internal/repository/room/inmemory"
	"github.com/syncstream/server/internal/repository/snapshot"
	snapshotRedis "github.com/syncstream/server/internal/repository/snapshot/redis"
	"github.com/syncstream/server/pkg/database"
	"github.com/syncstream/server/pkg/randstr"
)

func newTestService(t *testing.T) *service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := database.New(&database.Config{Driver: "sqlite", FilePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, mirror.Models()...))

	return NewService(
		roomInmemory.NewRepo(randstr.New([]byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")), logger),
		connInmemory.NewRepo(logger),
		mirrorGorm.NewRepo(db),
		snapshotRedis.NewRepo(rc, time.Hour),
		logger,
	)
}

func connect(t *testing.T, s *service, connId string) *websocket.Conn {
	t.Helper()

	conn := &websocket.Conn{}
	require.NoError(t, s.ConnectMember(context.Background(), &ConnectMemberParams{Conn: conn, ConnId: connId}))
	return conn
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	hostConn := connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)
	assert.Len(t, createResp.Code, 6)
	require.Len(t, createResp.Members, 1)
	assert.True(t, createResp.Members[0].IsHost)
	assert.Empty(t, createResp.Queue)
	require.Len(t, createResp.Conns, 1)
	assert.Same(t, hostConn, createResp.Conns[0])

	guestConn := connect(t, s, "guest")
	joinResp, err := s.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", Code: createResp.Code, Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, createResp.Code, joinResp.Code)
	require.Len(t, joinResp.Members, 2)
	assert.Equal(t, "bob", joinResp.Members[1].Username)
	assert.False(t, joinResp.Members[1].IsHost)
	require.Len(t, joinResp.Conns, 2)
	assert.Contains(t, joinResp.Conns, guestConn)

	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", Code: createResp.Code, Username: "bob"})
	assert.ErrorIs(t, err, roomRepo.ErrAlreadyInRoom)

	loadResp, err := s.LoadVideo(ctx, &LoadVideoParams{SenderId: "host", VideoId: "dQw4w9WgXcQ", CurrentTime: 5})
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", loadResp.Player.VideoId)
	assert.False(t, loadResp.Player.IsPlaying)
	assert.Len(t, loadResp.Conns, 2)

	_, err = s.LoadVideo(ctx, &LoadVideoParams{SenderId: "guest", VideoId: "nope"})
	assert.ErrorIs(t, err, roomRepo.ErrPermissionDenied)

	playResp, err := s.UpdatePlayerState(ctx, &UpdatePlayerStateParams{SenderId: "host", CurrentTime: 7.5, IsPlaying: true})
	require.NoError(t, err)
	assert.True(t, playResp.Player.IsPlaying)
	assert.Equal(t, 7.5, playResp.Player.CurrentTime)
}

func TestHeartbeatExcludesHost(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	guestConn := connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", Code: createResp.Code, Username: "bob"})
	require.NoError(t, err)

	resp, err := s.Heartbeat(ctx, &HeartbeatParams{SenderId: "host", CurrentTime: 120})
	require.NoError(t, err)
	assert.Equal(t, float64(120), resp.CurrentTime)
	require.Len(t, resp.Conns, 1)
	assert.Same(t, guestConn, resp.Conns[0])

	_, err = s.Heartbeat(ctx, &HeartbeatParams{SenderId: "guest", CurrentTime: 1})
	assert.ErrorIs(t, err, roomRepo.ErrPermissionDenied)
}

func TestQueueFlow(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	_, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	_, err = s.PlayNext(ctx, "host")
	assert.ErrorIs(t, err, roomRepo.ErrEmptyQueue)

	addResp, err := s.AddToQueue(ctx, &AddToQueueParams{SenderId: "host", VideoId: "v0", Title: "first"})
	require.NoError(t, err)
	require.Len(t, addResp.Queue, 1)
	assert.Equal(t, 0, addResp.Queue[0].Position)

	_, err = s.AddToQueue(ctx, &AddToQueueParams{SenderId: "host", VideoId: "v1", Title: "second"})
	require.NoError(t, err)

	nextResp, err := s.PlayNext(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, "v0", nextResp.Player.VideoId)
	assert.True(t, nextResp.Player.IsPlaying)
	assert.Equal(t, float64(0), nextResp.Player.CurrentTime)
	require.Len(t, nextResp.Queue, 1)
	assert.Equal(t, "v1", nextResp.Queue[0].VideoId)

	removeResp, err := s.RemoveFromQueue(ctx, &RemoveFromQueueParams{SenderId: "host", Position: 0})
	require.NoError(t, err)
	assert.Empty(t, removeResp.Queue)
}

func TestSendMessage(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", Code: createResp.Code, Username: "bob"})
	require.NoError(t, err)

	resp, err := s.SendMessage(ctx, &SendMessageParams{SenderId: "guest", Message: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "bob", resp.Username)
	assert.Equal(t, "hello", resp.Message)
	// chat reaches the whole room, sender included
	assert.Len(t, resp.Conns, 2)

	_, err = s.SendMessage(ctx, &SendMessageParams{SenderId: "guest", Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = s.SendMessage(ctx, &SendMessageParams{SenderId: "stranger", Message: "hi"})
	assert.ErrorIs(t, err, roomRepo.ErrMemberNotFound)
}

func TestRelayGameEvent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	guestConn := connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", Code: createResp.Code, Username: "bob"})
	require.NoError(t, err)

	// any member may emit; the sender never hears its own event back
	resp, err := s.RelayGameEvent(ctx, "host")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	require.Len(t, resp.Conns, 1)
	assert.Same(t, guestConn, resp.Conns[0])

	resp, err = s.RelayGameEvent(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, "bob", resp.Username)
	require.Len(t, resp.Conns, 1)
}

func TestDisconnectPromotesNewHost(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	guestConn := connect(t, s, "guest")
	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "guest", Code: createResp.Code, Username: "bob"})
	require.NoError(t, err)

	resp, err := s.DisconnectMember(ctx, "host")
	require.NoError(t, err)
	assert.True(t, resp.WasHost)
	assert.False(t, resp.IsRoomDeleted)
	assert.Equal(t, "alice", resp.Username)
	assert.Same(t, guestConn, resp.PromotedConn)
	require.Len(t, resp.Members, 1)
	assert.True(t, resp.Members[0].IsHost)

	// promoted member can now drive playback
	_, err = s.LoadVideo(ctx, &LoadVideoParams{SenderId: "guest", VideoId: "abc"})
	assert.NoError(t, err)
}

func TestDisconnectLastMemberDeletesRoom(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	_, err = s.GetRoomSnapshot(ctx, createResp.Code)
	require.NoError(t, err)

	resp, err := s.DisconnectMember(ctx, "host")
	require.NoError(t, err)
	assert.True(t, resp.IsRoomDeleted)

	_, err = s.GetRoomSnapshot(ctx, createResp.Code)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)

	_, err = s.JoinRoom(ctx, &JoinRoomParams{ConnId: "late", Code: createResp.Code, Username: "carol"})
	assert.ErrorIs(t, err, roomRepo.ErrRoomNotFound)
}

func TestGetRoomSnapshot(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	connect(t, s, "host")
	createResp, err := s.CreateRoom(ctx, &CreateRoomParams{ConnId: "host", Username: "alice"})
	require.NoError(t, err)

	_, err = s.LoadVideo(ctx, &LoadVideoParams{SenderId: "host", VideoId: "dQw4w9WgXcQ", CurrentTime: 30})
	require.NoError(t, err)

	snap, err := s.GetRoomSnapshot(ctx, createResp.Code)
	require.NoError(t, err)
	assert.Equal(t, createResp.Code, snap.Code)
	assert.Equal(t, "host", snap.HostConnId)
	assert.Equal(t, "dQw4w9WgXcQ", snap.VideoId)
	assert.Equal(t, float64(30), snap.CurrentTime)
	require.Len(t, snap.Members, 1)
	assert.Equal(t, "alice", snap.Members[0].Username)
}
