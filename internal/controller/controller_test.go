package controller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roomRepo "github.com/syncstream/server/internal/repository/room"
	"github.com/syncstream/server/internal/repository/snapshot"
	"github.com/syncstream/server/internal/service/room"
)

// stubRoomService hands back canned responses addressed to every
// connection it has seen, so outbound payload shapes can be asserted over
// a real websocket.
type stubRoomService struct {
	mu          sync.Mutex
	conns       []*websocket.Conn
	createCalls int
}

func (s *stubRoomService) allConns() []*websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*websocket.Conn(nil), s.conns...)
}

func (s *stubRoomService) ConnectMember(_ context.Context, params *room.ConnectMemberParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns = append(s.conns, params.Conn)
	return nil
}

func (s *stubRoomService) DisconnectMember(context.Context, string) (room.DisconnectMemberResponse, error) {
	return room.DisconnectMemberResponse{}, roomRepo.ErrMemberNotFound
}

func (s *stubRoomService) CreateRoom(_ context.Context, params *room.CreateRoomParams) (room.CreateRoomResponse, error) {
	s.mu.Lock()
	s.createCalls++
	s.mu.Unlock()

	return room.CreateRoomResponse{
		Code:    "ABC123",
		Members: []room.Member{{Username: params.Username, IsHost: true}},
		Queue:   []room.QueueItem{},
		Conns:   s.allConns(),
	}, nil
}

func (s *stubRoomService) JoinRoom(_ context.Context, params *room.JoinRoomParams) (room.JoinRoomResponse, error) {
	if params.Code != "ABC123" {
		return room.JoinRoomResponse{}, roomRepo.ErrRoomNotFound
	}

	return room.JoinRoomResponse{
		Code:    params.Code,
		State:   room.PlayerState{VideoId: "v1", CurrentTime: 10, IsPlaying: true},
		Members: []room.Member{{Username: "alice", IsHost: true}, {Username: params.Username}},
		Queue:   []room.QueueItem{},
		Conns:   s.allConns(),
	}, nil
}

func (s *stubRoomService) LoadVideo(_ context.Context, params *room.LoadVideoParams) (room.PlayerResponse, error) {
	return room.PlayerResponse{
		Code:   "ABC123",
		Player: room.PlayerState{VideoId: params.VideoId, CurrentTime: params.CurrentTime},
		Conns:  s.allConns(),
	}, nil
}

func (s *stubRoomService) UpdatePlayerState(_ context.Context, params *room.UpdatePlayerStateParams) (room.PlayerResponse, error) {
	return room.PlayerResponse{
		Code:   "ABC123",
		Player: room.PlayerState{VideoId: "v1", CurrentTime: params.CurrentTime, IsPlaying: params.IsPlaying},
		Conns:  s.allConns(),
	}, nil
}

func (s *stubRoomService) Heartbeat(_ context.Context, params *room.HeartbeatParams) (room.HeartbeatResponse, error) {
	return room.HeartbeatResponse{Code: "ABC123", CurrentTime: params.CurrentTime, IsPlaying: true, Conns: s.allConns()}, nil
}

func (s *stubRoomService) ToggleBackgroundPlay(_ context.Context, params *room.ToggleBackgroundPlayParams) (room.ToggleBackgroundPlayResponse, error) {
	return room.ToggleBackgroundPlayResponse{Code: "ABC123", Enabled: params.Enabled, Conns: s.allConns()}, nil
}

func (s *stubRoomService) AddToQueue(context.Context, *room.AddToQueueParams) (room.QueueResponse, error) {
	return room.QueueResponse{Code: "ABC123", Queue: []room.QueueItem{}, Conns: s.allConns()}, nil
}

func (s *stubRoomService) RemoveFromQueue(context.Context, *room.RemoveFromQueueParams) (room.QueueResponse, error) {
	return room.QueueResponse{Code: "ABC123", Queue: []room.QueueItem{}, Conns: s.allConns()}, nil
}

func (s *stubRoomService) PlayNext(context.Context, string) (room.PlayNextResponse, error) {
	return room.PlayNextResponse{
		Code:   "ABC123",
		Player: room.PlayerState{VideoId: "v3", CurrentTime: 0, IsPlaying: true},
		Queue:  []room.QueueItem{},
		Conns:  s.allConns(),
	}, nil
}

func (s *stubRoomService) SendMessage(_ context.Context, params *room.SendMessageParams) (room.SendMessageResponse, error) {
	return room.SendMessageResponse{Code: "ABC123", Username: "alice", Message: params.Message, Conns: s.allConns()}, nil
}

func (s *stubRoomService) RelayGameEvent(context.Context, string) (room.RelayGameEventResponse, error) {
	return room.RelayGameEventResponse{Code: "ABC123", Username: "alice", Conns: s.allConns()}, nil
}

func (s *stubRoomService) GetRoomSnapshot(context.Context, string) (snapshot.RoomSnapshot, error) {
	return snapshot.RoomSnapshot{}, snapshot.ErrSnapshotNotFound
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialTestServer(t *testing.T) (*websocket.Conn, *stubRoomService, *controller) {
	t.Helper()

	stub := &stubRoomService{}
	c := NewController(stub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, stub, c
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func payloadMap(t *testing.T, f frame) map[string]any {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(f.Payload, &m))
	return m
}

func TestPlayNextBroadcastsPlayingState(t *testing.T) {
	conn, _, _ := dialTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "play-next"}))

	f := readFrame(t, conn)
	require.Equal(t, "video-loaded", f.Type)
	m := payloadMap(t, f)
	assert.Equal(t, "v3", m["videoId"])
	assert.Equal(t, float64(0), m["currentTime"])
	assert.Equal(t, true, m["isPlaying"])
	assert.Contains(t, m, "timestamp")

	f = readFrame(t, conn)
	assert.Equal(t, "queue-update", f.Type)
}

func TestLoadVideoBroadcastsPausedState(t *testing.T) {
	conn, _, _ := dialTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "load-video",
		"payload": map[string]any{"videoId": "abc", "currentTime": 5},
	}))

	f := readFrame(t, conn)
	require.Equal(t, "video-loaded", f.Type)
	m := payloadMap(t, f)
	assert.Equal(t, "abc", m["videoId"])
	assert.Equal(t, float64(5), m["currentTime"])
	assert.Equal(t, false, m["isPlaying"])
	assert.Contains(t, m, "timestamp")
}

func TestCreateRoomRejectsOversizedUsername(t *testing.T) {
	conn, stub, _ := dialTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "create-room",
		"payload": map[string]any{"username": strings.Repeat("a", 65)},
	}))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "create-room",
		"payload": map[string]any{"username": "alice"},
	}))

	// the oversized request is dropped; the first reply belongs to the
	// valid one
	f := readFrame(t, conn)
	require.Equal(t, "room-created", f.Type)
	m := payloadMap(t, f)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "ABC123", m["roomId"])
	assert.Equal(t, true, m["isHost"])

	stub.mu.Lock()
	calls := stub.createCalls
	stub.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestJoinRoomValidation(t *testing.T) {
	conn, _, _ := dialTestServer(t)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "join-room",
		"payload": map[string]any{"roomId": "bad", "username": "bob"},
	}))
	f := readFrame(t, conn)
	require.Equal(t, "join-error", f.Type)
	assert.Equal(t, "Room not found", payloadMap(t, f)["error"])

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "join-room",
		"payload": map[string]any{"roomId": "ABC123", "username": strings.Repeat("b", 65)},
	}))
	f = readFrame(t, conn)
	assert.Equal(t, "join-error", f.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "join-room",
		"payload": map[string]any{"roomId": "ABC123", "username": "bob"},
	}))
	f = readFrame(t, conn)
	require.Equal(t, "room-joined", f.Type)
	m := payloadMap(t, f)
	assert.Equal(t, true, m["success"])
	state, ok := m["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v1", state["videoId"])
	assert.Equal(t, true, state["isPlaying"])
}

func TestConcurrentBroadcasts(t *testing.T) {
	conn, stub, c := dialTestServer(t)

	conns := stub.allConns()
	require.Len(t, conns, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				c.broadcast(context.Background(), conns, &Output{
					Type:    "sync-check",
					Payload: map[string]any{"currentTime": float64(i)},
				})
			}
		}()
	}
	wg.Wait()

	conn.Close()
	<-done
}
